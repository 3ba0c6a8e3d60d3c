package writer

import (
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uilive"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"pumpfun-api/config"
	"pumpfun-api/model"
)

var faint = color.New(color.Faint).SprintFunc()

type TableWriter struct {
	*uilive.Writer
	table   *tablewriter.Table
	columns []string
}

// Set up ascii table writer
func NewTableWriter(out io.Writer, columns []string) (*TableWriter, error) {
	for _, col := range columns {
		if !isSupported(col) {
			return nil, errors.Errorf("unknown column: %s", col)
		}
	}
	tw := &TableWriter{Writer: uilive.New(), columns: columns}
	tw.Writer.Out = out
	tw.table = tablewriter.NewWriter(tw.Writer)
	tw.table.SetAutoFormatHeaders(false)
	tw.table.SetAutoWrapText(false)
	formattedHeaders := make([]string, len(columns))
	for i, hdr := range columns {
		formattedHeaders[i] = color.YellowString(hdr)
	}
	tw.table.SetHeader(formattedHeaders)
	tw.table.SetRowLine(true)
	tw.table.SetCenterSeparator(faint("-"))
	tw.table.SetColumnSeparator(faint("|"))
	tw.table.SetRowSeparator(faint("-"))
	return tw, nil
}

func isSupported(col string) bool {
	for _, c := range []string{config.ColumnSymbol, config.ColumnMarketCap, config.ColumnVolume24h,
		config.ColumnHolders, config.ColumnPrice, config.ColumnChange24hPct} {
		if strings.EqualFold(c, col) {
			return true
		}
	}
	return false
}

func (tw *TableWriter) highlightChange(changePct float64) string {
	changeText := strconv.FormatFloat(changePct, 'f', 2, 64)
	if changePct == 0 {
		changeText = faint("0")
	} else if changePct > 0 {
		changeText = color.GreenString(changeText)
	} else {
		changeText = color.RedString(changeText)
	}
	return changeText
}

func (tw *TableWriter) Render(records []*model.TokenRecord) error {
	tw.table.ClearRows()
	// Fill in data
	for _, record := range records {
		columns := make([]string, 0, len(tw.columns))
		for _, hdr := range tw.columns {
			switch strings.ToLower(hdr) {
			case strings.ToLower(config.ColumnSymbol):
				columns = append(columns, record.Symbol)
			case strings.ToLower(config.ColumnMarketCap):
				columns = append(columns, "$"+FormatThousands(record.Marketcap.USD))
			case strings.ToLower(config.ColumnVolume24h):
				columns = append(columns, "$"+FormatThousands(record.Volume.USD24h))
			case strings.ToLower(config.ColumnHolders):
				if record.Holders.Count == nil {
					columns = append(columns, faint("N/A"))
				} else {
					columns = append(columns, FormatThousands(float64(*record.Holders.Count)))
				}
			case strings.ToLower(config.ColumnPrice):
				columns = append(columns, "$"+strconv.FormatFloat(record.PriceUSD, 'f', -1, 64))
			case strings.ToLower(config.ColumnChange24hPct):
				columns = append(columns, tw.highlightChange(record.PriceChange24h))
			}
		}
		tw.table.Append(columns)
	}

	tw.table.Render()
	return tw.Flush()
}

// FormatThousands renders v with comma separators and at most two decimals, e.g. 1,234,567.89.
func FormatThousands(v float64) string {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	s = strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	return sign + b.String() + frac
}

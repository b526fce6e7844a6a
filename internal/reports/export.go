package reports

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"counterpos/m/domain"
	"counterpos/m/internal/store"
)

const (
	rule          = "═══════════════════════════════════════"
	csvDateLayout = "02 Jan 2006, 03:04 pm"
	salesSheet    = "Sales"
)

var salesHeaders = []string{"Date", "Customer", "Payment Method", "Discount", "Total", "Items"}

func rupees(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

// WriteDailySummary writes the plain-text end-of-day report. now must be in
// the store's time zone.
func WriteDailySummary(w io.Writer, storeName string, d Dashboard, now time.Time) error {
	var b strings.Builder
	b.WriteString(strings.ToUpper(storeName) + "\n")
	b.WriteString("DAILY SUMMARY REPORT\n")
	b.WriteString(rule + "\n\n")
	fmt.Fprintf(&b, "Date: %s\n", now.Format("Monday, 2 January 2006"))
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("3:04:05 pm"))

	b.WriteString(rule + "\nSALES OVERVIEW\n" + rule + "\n\n")
	fmt.Fprintf(&b, "%-21s%s\n", "Today's Revenue:", rupees(d.TodayRevenue))
	fmt.Fprintf(&b, "%-21s%d transactions\n\n", "Today's Sales:", d.TodaySalesCount)
	fmt.Fprintf(&b, "%-21s%s\n", "This Week:", rupees(d.WeekRevenue))
	fmt.Fprintf(&b, "%-21s%d transactions\n\n", "Week Sales:", d.WeekSalesCount)
	fmt.Fprintf(&b, "%-21s%s\n", "This Month:", rupees(d.MonthRevenue))
	fmt.Fprintf(&b, "%-21s%d transactions\n\n", "Month Sales:", d.MonthSalesCount)

	b.WriteString(rule + "\nINVENTORY STATUS\n" + rule + "\n\n")
	fmt.Fprintf(&b, "%-21s%d\n", "Total Products:", d.TotalProducts)
	fmt.Fprintf(&b, "%-21s%d\n\n", "Low Stock Items:", d.LowStockCount)

	if len(d.LowStockProducts) > 0 {
		b.WriteString("LOW STOCK ALERT:\n")
		for _, p := range d.LowStockProducts {
			fmt.Fprintf(&b, "  • %s (%d left)\n", p.Name, p.StockQuantity)
		}
	} else {
		b.WriteString("All products well-stocked ✓\n")
	}
	b.WriteString("\n" + rule + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func saleRow(s domain.SaleWithItems, loc *time.Location) []string {
	items := make([]string, 0, len(s.Items))
	for _, item := range s.Items {
		items = append(items, fmt.Sprintf("%s x%d", item.DisplayName(), item.Quantity))
	}
	return []string{
		s.CreatedAt.In(loc).Format(csvDateLayout),
		s.CustomerLabel(),
		string(s.PaymentMethod),
		s.DiscountAmount.StringFixed(2),
		s.TotalAmount.StringFixed(2),
		strings.Join(items, "; "),
	}
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}

// WriteSalesCSV writes one row per sale. The header is bare and every data
// cell is quoted.
func WriteSalesCSV(w io.Writer, sales []domain.SaleWithItems, loc *time.Location) error {
	var b strings.Builder
	b.WriteString(strings.Join(salesHeaders, ","))
	for _, s := range sales {
		row := saleRow(s, loc)
		for i := range row {
			row[i] = quote(row[i])
		}
		b.WriteString("\n")
		b.WriteString(strings.Join(row, ","))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteSalesXLSX writes the CSV rows as a spreadsheet with numeric money columns.
func WriteSalesXLSX(w io.Writer, sales []domain.SaleWithItems, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", salesSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]interface{}, len(salesHeaders))
	for i, h := range salesHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(salesSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, s := range sales {
		row := saleRow(s, loc)
		discount, _ := s.DiscountAmount.Round(2).Float64()
		total, _ := s.TotalAmount.Round(2).Float64()
		values := []interface{}{row[0], row[1], row[2], discount, total, row[5]}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(salesSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	if err := f.SetColWidth(salesSheet, "A", "A", 22); err != nil {
		return err
	}
	if err := f.SetColWidth(salesSheet, "F", "F", 60); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteBackup writes the full snapshot as indented JSON.
func WriteBackup(w io.Writer, backup store.Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(backup)
}

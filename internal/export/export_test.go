package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/Dan9191/family-ledger/internal/models"
	"github.com/beevik/etree"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

func sampleStatement() *Statement {
	acc := models.Account{ID: "a1", Name: "Wallet", Type: models.AccountCash, Balance: decimal.NewFromInt(70)}
	created := time.Date(2026, 10, 15, 1, 0, 0, 0, time.UTC)
	txs := []models.Transaction{
		{
			ID: "t2", Type: models.Expense, Amount: decimal.NewFromInt(30), Description: "Lunch", Category: "Food",
			Date: models.MustParseDate("2026-10-15"), CreatedAt: created.Add(time.Minute), Source: models.SourceManual,
		},
		{
			ID: "t1", Type: models.Income, Amount: decimal.NewFromInt(100), Description: "Opening balance",
			Category: models.CategoryInitialBalance, Date: models.MustParseDate("2026-10-15"), CreatedAt: created,
			Source: models.SourceInitial,
		},
	}
	return NewStatement(acc, txs, models.MustParseDate("2026-10-15"))
}

func TestNewStatementRunningBalance(t *testing.T) {
	st := sampleStatement()
	if len(st.Lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(st.Lines))
	}
	if st.Lines[0].Transaction.ID != "t1" || !st.Lines[0].Balance.Equal(decimal.NewFromInt(100)) {
		t.Errorf("first line = %s balance %s", st.Lines[0].Transaction.ID, st.Lines[0].Balance)
	}
	if !st.Lines[1].Balance.Equal(decimal.NewFromInt(70)) || !st.Closing.Equal(st.Account.Balance) {
		t.Errorf("closing = %s, want 70", st.Closing)
	}
}

func TestWriteXML(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXML(&buf, sampleStatement()); err != nil {
		t.Fatalf("WriteXML failed: %v", err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(buf.Bytes()); err != nil {
		t.Fatalf("output is not XML: %v", err)
	}
	if name := doc.FindElement("//account/name"); name == nil || name.Text() != "Wallet" {
		t.Errorf("account name element = %v", name)
	}
	txs := doc.FindElements("//transactions/transaction")
	if len(txs) != 2 {
		t.Fatalf("got %d transaction elements, want 2", len(txs))
	}
	if amt := txs[1].FindElement("./amount"); amt == nil || amt.Text() != "-30.00" {
		t.Errorf("second amount = %v, want -30.00", amt)
	}
	if closing := doc.FindElement("//closingBalance"); closing == nil || closing.Text() != "70.00" {
		t.Errorf("closing balance = %v, want 70.00", closing)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleStatement()); err != nil {
		t.Fatalf("WriteXLSX failed: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("output is not a workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) < 3 || rows[0][0] != "Date" {
		t.Fatalf("rows = %v", rows)
	}
	if rows[1][3] != "Opening balance" || rows[2][5] != "70" {
		t.Errorf("data rows = %v", rows[1:3])
	}
}

package export

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// WriteXML writes the statement as an indented XML document.
func WriteXML(w io.Writer, st *Statement) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("statement")
	root.CreateAttr("generated", st.GeneratedOn.String())

	acc := root.CreateElement("account")
	acc.CreateAttr("id", st.Account.ID)
	acc.CreateAttr("type", string(st.Account.Type))
	acc.CreateElement("name").SetText(st.Account.Name)
	acc.CreateElement("balance").SetText(st.Account.Balance.StringFixed(2))

	txs := root.CreateElement("transactions")
	for _, line := range st.Lines {
		tx := line.Transaction
		el := txs.CreateElement("transaction")
		el.CreateAttr("id", tx.ID)
		el.CreateAttr("date", tx.Date.String())
		el.CreateAttr("type", string(tx.Type))
		el.CreateAttr("source", string(tx.Source))
		el.CreateElement("description").SetText(tx.Description)
		el.CreateElement("category").SetText(tx.Category)
		el.CreateElement("amount").SetText(tx.Effect().StringFixed(2))
		el.CreateElement("balance").SetText(line.Balance.StringFixed(2))
	}
	root.CreateElement("closingBalance").SetText(st.Closing.StringFixed(2))

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XML statement: %w", err)
	}
	return nil
}

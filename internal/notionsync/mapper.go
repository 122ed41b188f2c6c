package notionsync

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/GabrielSantos777/planix/internal/domain"
)

func titleProperty(content string) notionapi.TitleProperty {
	return notionapi.TitleProperty{
		Title: []notionapi.RichText{
			{
				Type: notionapi.ObjectTypeText,
				Text: &notionapi.Text{Content: content},
			},
		},
	}
}

func richTextProperty(content string) notionapi.RichTextProperty {
	return notionapi.RichTextProperty{
		RichText: []notionapi.RichText{
			{
				Type: notionapi.ObjectTypeText,
				Text: &notionapi.Text{Content: content},
			},
		},
	}
}

func selectProperty(name string) notionapi.SelectProperty {
	return notionapi.SelectProperty{
		Select: notionapi.Option{Name: name},
	}
}

func dateProperty(t time.Time) notionapi.DateProperty {
	d := notionapi.Date(t)
	return notionapi.DateProperty{
		Date: &notionapi.DateObject{Start: &d},
	}
}

// TransactionToNotionProperties converts a ledger transaction to the property
// set of the Transactions database. names resolves account/card/category ids
// to their display names; missing entries fall back to the raw id.
func TransactionToNotionProperties(tx *domain.Transaction, names map[string]string) notionapi.Properties {
	displayName := func(id string) string {
		if name, ok := names[id]; ok {
			return name
		}
		return id
	}

	props := notionapi.Properties{
		"Transaction ID": titleProperty(tx.TransactionID),
		"Amount": notionapi.NumberProperty{
			Number: tx.Amount.InexactFloat64(),
		},
		"Date": dateProperty(tx.Date),
		"Type": selectProperty(string(tx.Type)),
	}

	if tx.Description != "" {
		props["Description"] = richTextProperty(tx.Description)
	}
	if tx.AccountID != "" {
		props["Account"] = selectProperty(displayName(tx.AccountID))
	}
	if tx.CardID != "" {
		props["Card"] = selectProperty(displayName(tx.CardID))
	}
	if tx.CategoryID != "" {
		props["Category"] = selectProperty(displayName(tx.CategoryID))
	}
	if tx.IsInstallment {
		props["Installment"] = notionapi.CheckboxProperty{Checkbox: true}
	}
	if tx.Notes != "" {
		props["Notes"] = richTextProperty(tx.Notes)
	}

	return props
}

// InvoiceToNotionProperties converts one computed billing cycle of a card to
// the property set of the Invoices database.
func InvoiceToNotionProperties(cardName string, inv *domain.MonthlyInvoice) notionapi.Properties {
	return notionapi.Properties{
		"Cycle": titleProperty(invoiceCycleKey(cardName, inv)),
		"Card":  selectProperty(cardName),
		"Total": notionapi.NumberProperty{
			Number: inv.Total.InexactFloat64(),
		},
		"Status":   selectProperty(string(inv.Status)),
		"Due Date": dateProperty(inv.DueDate),
	}
}

// invoiceCycleKey is the stable title used to recognize a cycle page across
// syncs, e.g. "Platinum 2024-03".
func invoiceCycleKey(cardName string, inv *domain.MonthlyInvoice) string {
	return cardName + " " + time.Date(inv.Year, inv.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// extractPageTitle pulls the plain-text title out of a page, used to match
// existing pages against ledger rows.
func extractPageTitle(page notionapi.Page) string {
	for _, prop := range page.Properties {
		if title, ok := prop.(*notionapi.TitleProperty); ok {
			for _, rt := range title.Title {
				if rt.PlainText != "" {
					return rt.PlainText
				}
				if rt.Text != nil {
					return rt.Text.Content
				}
			}
		}
	}
	return ""
}

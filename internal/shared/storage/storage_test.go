package storage

import (
	"context"
	"strings"
	"testing"
)

func TestValidateDocumentType(t *testing.T) {
	valid := []struct{ name, contentType string }{
		{"nota-fiscal.pdf", "application/pdf"},
		{"boleto.PDF", ""},
		{"comprovante.png", ""},
		{"foto.jpeg", ""},
		{"nfe.xml", "text/xml"},
		{"sem-extensao", "application/pdf"},
	}
	for _, c := range valid {
		if err := ValidateDocumentType(c.name, c.contentType); err != nil {
			t.Errorf("ValidateDocumentType(%q, %q) rejected valid document: %v", c.name, c.contentType, err)
		}
	}

	invalid := []struct{ name, contentType string }{
		{"script.exe", ""},
		{"planilha.xlsx", "application/vnd.ms-excel"},
		{"sem-extensao", ""},
	}
	for _, c := range invalid {
		if err := ValidateDocumentType(c.name, c.contentType); err == nil {
			t.Errorf("ValidateDocumentType(%q, %q) accepted invalid document", c.name, c.contentType)
		}
	}
}

func TestOrderDocumentObjectName(t *testing.T) {
	cases := []struct {
		kind, fileName, want string
	}{
		{"nf", "nota fiscal 42.pdf", "clients/t1/purchase-orders/o1/nf-nota_fiscal_42.pdf"},
		{"boleto-2", "boleto.pdf", "clients/t1/purchase-orders/o1/boleto-2-boleto.pdf"},
		{"nf", "../escape/nf.pdf", "clients/t1/purchase-orders/o1/nf-nf.pdf"},
	}
	for _, c := range cases {
		got := orderDocumentObjectName("t1", "o1", c.kind, c.fileName)
		if got != c.want {
			t.Errorf("orderDocumentObjectName(%q, %q) = %q, want %q", c.kind, c.fileName, got, c.want)
		}
	}
}

func TestPutWithoutClient(t *testing.T) {
	store := NewAttachmentStore(nil, "")
	_, err := store.PutOrderDocument(context.Background(), "t1", "o1", "nf", "nf.pdf",
		strings.NewReader("data"), 4, "application/pdf")
	if err == nil {
		t.Fatal("expected error when storage is not configured")
	}
}

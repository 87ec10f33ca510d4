package cnpj

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"12.345.678/0001-95", "12345678000195", false},
		{"12345678000195", "12345678000195", false},
		{"123456", "", true},
		{"", "", true},
		{"12.345.678/0001-9", "", true},
	}
	for _, c := range cases {
		got, err := Normalize(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("Normalize(%q) expected error, got %q", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Normalize(%q) failed: %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/12345678000195":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{
				"razao_social": "CLINICA VETERINARIA EXEMPLO LTDA",
				"nome_fantasia": "VetExemplo",
				"descricao_situacao_cadastral": "ATIVA",
				"uf": "SP",
				"municipio": "SAO PAULO",
				"logradouro": "RUA DAS FLORES",
				"numero": "100",
				"cep": "01000-000",
				"email": "contato@vetexemplo.com.br",
				"ddd_telefone_1": "1133334444"
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 2*time.Second, nil, time.Hour)

	info, err := client.Lookup(context.Background(), "12.345.678/0001-95")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if info.CNPJ != "12345678000195" {
		t.Fatalf("expected normalized cnpj, got %q", info.CNPJ)
	}
	if info.RazaoSocial != "CLINICA VETERINARIA EXEMPLO LTDA" || info.UF != "SP" {
		t.Fatalf("unexpected company info: %+v", info)
	}

	if _, err := client.Lookup(context.Background(), "99.999.999/9999-99"); err == nil {
		t.Fatal("expected error for unregistered cnpj")
	}
}

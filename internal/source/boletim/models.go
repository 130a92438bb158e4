package boletim

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FiltersResponse is the body of GET /filtros.
type FiltersResponse struct {
	Client APIClient `json:"cliente"`
}

type APIClient struct {
	ID      int64       `json:"id"`
	Name    string      `json:"razao_social"`
	Filters []APIFilter `json:"filtros"`
}

type APIFilter struct {
	ID          int64  `json:"id"`
	Description string `json:"descricao"`
	Morning     bool   `json:"manha"`
	Afternoon   bool   `json:"tarde"`
	Night       bool   `json:"noite"`
}

// BulletinsResponse is one page of GET /filtro/{id}/boletins. Total is
// nil when the upstream omits it.
type BulletinsResponse struct {
	Bulletins []APIBulletin `json:"boletins"`
	Total     *int          `json:"total"`
}

type APIBulletin struct {
	ID            int64  `json:"id"`
	EditionNumber int64  `json:"numero_edicao"`
	ClosingAt     string `json:"datahora_fechamento"`
	FilterID      int64  `json:"filtro_id"`
	BiddingCount  int    `json:"quantidade_licitacoes"`
	FollowUpCount int    `json:"quantidade_acompanhamentos"`
}

// BulletinDetailResponse is the body of GET /boletim/{id}.
type BulletinDetailResponse struct {
	Bulletin  APIBulletin   `json:"boletim"`
	Biddings  []APIBidding  `json:"licitacoes"`
	FollowUps []APIFollowUp `json:"acompanhamentos"`
}

type APIIssuer struct {
	Name    string     `json:"nome"`
	Code    flexString `json:"codigo"`
	City    string     `json:"cidade"`
	State   string     `json:"uf"`
	Address string     `json:"endereco"`
	Phone   flexString `json:"telefone"`
	Site    string     `json:"site"`
}

type APIBidding struct {
	ID             int64      `json:"id"`
	Issuer         APIIssuer  `json:"orgao"`
	Subject        string     `json:"objeto"`
	Status         string     `json:"situacao"`
	OpeningAt      string     `json:"datahora_abertura"`
	DocumentAt     string     `json:"datahora_documento"`
	WithdrawalAt   string     `json:"datahora_retirada"`
	SiteVisitAt    string     `json:"datahora_visita"`
	DeadlineAt     string     `json:"datahora_prazo"`
	Edital         flexString `json:"edital"`
	Process        flexString `json:"processo"`
	DocumentURL    string     `json:"link_edital"`
	EstimatedValue flexFloat  `json:"valor_estimado"`
	EditalPrice    flexFloat  `json:"preco_edital"`
}

type APIFollowUp struct {
	ID        int64      `json:"id"`
	BiddingID int64      `json:"licitacao_id"`
	Subject   string     `json:"objeto"`
	Synthesis string     `json:"sintese"`
	SourceAt  string     `json:"data_fonte"`
	Edital    flexString `json:"edital"`
	Process   flexString `json:"processo"`
	Issuer    APIIssuer  `json:"orgao"`
}

// ErrorResponse is the error envelope the upstream returns, sometimes with
// a 200 status.
type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}

type APIError struct {
	Message string `json:"message"`
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		*f = ""
		return nil
	}
	if s[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			*f = ""
			return nil
		}
		*f = flexString(strings.TrimSpace(v))
		return nil
	}
	*f = flexString(s)
	return nil
}

// flexFloat accepts a JSON number, a numeric string in either "1234.56" or
// "1.234,56" notation, or null. Anything else decodes to nil.
type flexFloat struct {
	v *float64
}

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	f.v = nil
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		return nil
	}
	if s[0] == '"' {
		var raw string
		if err := json.Unmarshal(b, &raw); err != nil {
			return nil
		}
		s = normalizeDecimal(raw)
	}
	if v, err := strconv.ParseFloat(s, 64); err == nil {
		f.v = &v
	}
	return nil
}

func (f flexFloat) Ptr() *float64 {
	return f.v
}

func normalizeDecimal(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	return s
}

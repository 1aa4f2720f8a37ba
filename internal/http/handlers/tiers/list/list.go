// Package list реализует HTTP-обработчик каталога тарифов.
package list

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/http/response"
	"github.com/infinitefutureleadersconsultin-star/VOW-sub000/internal/rules/tier"
)

// FeatureView — функция тарифа с описанием для каталога.
type FeatureView struct {
	Code        tier.Feature `json:"code"`
	DisplayName string       `json:"display_name"`
	Limit       *int         `json:"limit,omitempty"`
}

// TierView — тариф для каталога.
type TierView struct {
	Name         tier.Tier     `json:"name"`
	DisplayName  string        `json:"display_name"`
	MonthlyPrice *float64      `json:"monthly_price,omitempty"`
	Features     []FeatureView `json:"features"`
}

// Handler возвращает тарифы в порядке возрастания.
type Handler struct {
	log *slog.Logger
}

// New создает новый Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Tags Tiers
// @Produce json
// @Success 200 {object} response.Response
// @Router /tiers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	all := tier.All()
	views := make([]TierView, 0, len(all))
	for _, info := range all {
		v := TierView{Name: info.Name, DisplayName: info.DisplayName, MonthlyPrice: info.MonthlyPrice}
		for _, f := range info.Features {
			fi, _ := tier.LookupFeature(f)
			fv := FeatureView{Code: f, DisplayName: fi.DisplayName}
			if n, limited := tier.FeatureLimit(info.Name, f); limited {
				fv.Limit = &n
			}
			v.Features = append(v.Features, fv)
		}
		views = append(views, v)
	}
	render.JSON(w, r, response.StatusOKWithData(views))
}

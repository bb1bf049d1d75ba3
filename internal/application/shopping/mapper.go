package shopping

import (
	"time"

	"github.com/nutriplan/core/internal/domain/shopping"
	"github.com/nutriplan/core/internal/ports/inbound"
)

func listToDTO(l *shopping.List) *inbound.ShoppingListDTO {
	dto := &inbound.ShoppingListDTO{
		ID:             l.ID,
		Name:           l.Name,
		ClientID:       l.ClientID,
		PlanID:         l.Source.PlanID,
		TemplateID:     l.Source.TemplateID,
		Status:         l.Status,
		TotalItems:     l.TotalItems,
		CompletedItems: l.CompletedItems,
		Items:          make([]inbound.ShoppingItemDTO, 0, len(l.Items)),
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      l.UpdatedAt.Format(time.RFC3339),
	}
	for _, it := range l.Items {
		dto.Items = append(dto.Items, inbound.ShoppingItemDTO{
			ID:          it.ID,
			Name:        it.Name,
			Quantity:    it.Quantity,
			Unit:        it.Unit,
			Category:    it.Category,
			IsPurchased: it.IsPurchased,
			OrderIndex:  it.OrderIndex,
		})
	}
	return dto
}

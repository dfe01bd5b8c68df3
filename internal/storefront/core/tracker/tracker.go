package tracker

import (
	"strings"

	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
)

const asapETA = "30-45 min"

var backOfficePrefixes = []string{"/dashboard", "/admin"}

// Viewer is where the tracker would be shown.
type Viewer struct {
	Path string
}

// BackOffice reports whether the viewer is on an owner or admin screen.
func (v Viewer) BackOffice() bool {
	for _, p := range backOfficePrefixes {
		if strings.HasPrefix(v.Path, p) {
			return true
		}
	}
	return false
}

type StageView struct {
	Key        Status
	Label      string
	Icon       string
	Completed  bool
	InProgress bool
}

type View struct {
	OrderID      string
	Status       string
	Restaurant   string
	ItemsSummary string
	ETA          string
	Index        int
	Stages       []StageView
}

// Project maps order onto the stage list. The second result is false when
// nothing should be shown.
func Project(order *entity.Order, viewer Viewer) (View, bool) {
	if order == nil || viewer.BackOffice() {
		return View{}, false
	}
	info := Describe(order.Status)
	if info.Terminal {
		return View{}, false
	}

	idx := info.Stage
	views := make([]StageView, len(stages))
	for i, s := range stages {
		views[i] = StageView{
			Key:        s.Key,
			Label:      s.Label,
			Icon:       s.Icon,
			Completed:  i <= idx,
			InProgress: i == idx,
		}
	}

	return View{
		OrderID:      order.ID,
		Status:       order.Status,
		Restaurant:   order.RestaurantName,
		ItemsSummary: itemsSummary(order.Items),
		ETA:          eta(order),
		Index:        idx,
		Stages:       views,
	}, true
}

func itemsSummary(items []entity.OrderItem) string {
	if len(items) == 0 {
		return "See order details"
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.Name)
	}
	return strings.Join(names, ", ")
}

func eta(order *entity.Order) string {
	if order.DeliveryTimeType == entity.DeliveryScheduled && order.ScheduledTime != "" {
		return order.ScheduledTime
	}
	return asapETA
}

package ws

import (
	"github.com/jcmexdev/food-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/food-storefront/internal/storefront/core/tracker"
)

type StageMessage struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Icon       string `json:"icon"`
	Completed  bool   `json:"completed"`
	InProgress bool   `json:"in_progress"`
}

type TrackerView struct {
	OrderID      string         `json:"order_id"`
	Status       string         `json:"status"`
	StatusLabel  string         `json:"status_label"`
	StatusColor  string         `json:"status_color"`
	Restaurant   string         `json:"restaurant"`
	ItemsSummary string         `json:"items_summary"`
	ETA          string         `json:"eta"`
	Index        int            `json:"index"`
	Stages       []StageMessage `json:"stages"`
}

// TrackerMessage is what the tracker endpoint and the websocket send. A
// hidden tracker has Visible=false and no view.
type TrackerMessage struct {
	Type    string       `json:"type"`
	Visible bool         `json:"visible"`
	Tracker *TrackerView `json:"tracker,omitempty"`
}

// NewTrackerMessage projects order for a viewer on path.
func NewTrackerMessage(order *entity.Order, path string) TrackerMessage {
	msg := TrackerMessage{Type: "tracker"}
	view, ok := tracker.Project(order, tracker.Viewer{Path: path})
	if !ok {
		return msg
	}
	info := tracker.Describe(view.Status)
	tv := &TrackerView{
		OrderID:      view.OrderID,
		Status:       view.Status,
		StatusLabel:  info.Label,
		StatusColor:  info.Color,
		Restaurant:   view.Restaurant,
		ItemsSummary: view.ItemsSummary,
		ETA:          view.ETA,
		Index:        view.Index,
		Stages:       make([]StageMessage, 0, len(view.Stages)),
	}
	for _, s := range view.Stages {
		tv.Stages = append(tv.Stages, StageMessage{
			Key:        string(s.Key),
			Label:      s.Label,
			Icon:       s.Icon,
			Completed:  s.Completed,
			InProgress: s.InProgress,
		})
	}
	msg.Visible = true
	msg.Tracker = tv
	return msg
}

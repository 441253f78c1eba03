package services

import (
	"sort"

	"github.com/zabotahq/zabota/internal/models"
)

// Feature describes one entry of the static client feature catalog.
// Nothing here is persisted; Enabled is computed per user at request time.
type Feature struct {
	Key            string `json:"key"`
	Name           string `json:"name"`
	Premium        bool   `json:"premium"`
	RequiresFamily bool   `json:"requiresFamily"`
	AssignedToUser bool   `json:"assignedToUser"`
	Enabled        bool   `json:"enabled"`
	Order          int    `json:"order"`
	Icon           string `json:"icon"`
	Route          string `json:"route"`
}

var featureCatalog = []Feature{
	{Key: "tasks", Name: "Задачи", AssignedToUser: true, Order: 10, Icon: "ic_tasks", Route: "app://features/tasks"},
	{Key: "medications", Name: "Медикаменты", AssignedToUser: true, Order: 20, Icon: "ic_pills", Route: "app://features/meds"},
	{Key: "blood_pressure", Name: "Давление", AssignedToUser: true, Order: 30, Icon: "ic_bp", Route: "app://features/bp"},
	{Key: "chat", Name: "Чат", RequiresFamily: true, Order: 40, Icon: "ic_chat", Route: "app://features/chat"},
	{Key: "password_manager", Name: "Менеджер паролей", Premium: true, AssignedToUser: true, Order: 50, Icon: "ic_passwords", Route: "app://features/passwords"},
}

// FeaturesFor evaluates the catalog for one user: premium features need the
// premium flag, family features need a current membership.
func FeaturesFor(user models.User) []Feature {
	hasFamily := user.FamilyID != nil

	features := make([]Feature, len(featureCatalog))
	copy(features, featureCatalog)
	for index := range features {
		feature := &features[index]
		feature.Enabled = (!feature.Premium || user.IsPremium) &&
			(!feature.RequiresFamily || hasFamily)
	}

	sort.SliceStable(features, func(i, j int) bool {
		return features[i].Order < features[j].Order
	})
	return features
}

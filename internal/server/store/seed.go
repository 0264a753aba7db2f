package store

import (
	_ "embed"
	"encoding/json"
)

// seedJSON is the dataset a fresh installation starts with. Timestamps and
// share keys are filled in by normalize.
//
//go:embed seed.json
var seedJSON []byte

// Seed identifiers.
const (
	SeedWorkspaceID = "workspace-demo"
	SeedFormID      = "landscaping-daily-log"
	SeedOwnerEmail  = "owner@landscape.app"
)

func seedRaw() map[string]any {
	var raw map[string]any
	if err := json.Unmarshal(seedJSON, &raw); err != nil {
		panic("store: invalid seed.json: " + err.Error())
	}
	return raw
}

// seedCollection returns a fresh copy of one seed collection.
func seedCollection(name string) []any {
	list, _ := seedRaw()[name].([]any)
	return list
}

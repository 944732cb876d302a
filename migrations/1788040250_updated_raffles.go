package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

// The winner relation lands after tickets exist; a raffle and its
// tickets reference each other.
func init() {
	m.Register(func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_raffles")
		if err != nil {
			return err
		}

		field := &core.RelationField{}
		if err := json.Unmarshal([]byte(`{
			"type": "relation",
			"name": "winner_ticket",
			"collectionId": "pbc_tickets",
			"maxSelect": 1,
			"cascadeDelete": false
		}`), field); err != nil {
			return err
		}
		collection.Fields.Add(field)

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_raffles")
		if err != nil {
			return err
		}

		collection.Fields.RemoveByName("winner_ticket")

		return app.Save(collection)
	})
}

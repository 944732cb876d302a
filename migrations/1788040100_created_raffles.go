package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_raffles",
			"name": "raffles",
			"type": "base",
			"system": false,
			"fields": [
				{
					"type": "text",
					"name": "item_name",
					"required": true,
					"max": 200
				},
				{
					"type": "editor",
					"name": "item_description"
				},
				{
					"type": "file",
					"name": "image",
					"maxSelect": 1,
					"maxSize": 5242880,
					"mimeTypes": ["image/jpeg", "image/png", "image/webp"]
				},
				{
					"type": "number",
					"name": "ticket_price",
					"required": true,
					"min": 0
				},
				{
					"type": "number",
					"name": "total_tickets",
					"required": true,
					"min": 1,
					"onlyInt": true
				},
				{
					"type": "number",
					"name": "sold_tickets",
					"min": 0,
					"onlyInt": true
				},
				{
					"type": "select",
					"name": "status",
					"required": true,
					"maxSelect": 1,
					"values": ["active", "soldout", "drawn", "cancelled"]
				},
				{
					"type": "date",
					"name": "draw_date"
				},
				{
					"type": "relation",
					"name": "winner_customer",
					"collectionId": "pbc_customers",
					"maxSelect": 1,
					"cascadeDelete": false
				},
				{
					"type": "number",
					"name": "max_per_customer",
					"min": 0,
					"onlyInt": true
				},
				{
					"type": "autodate",
					"name": "created",
					"onCreate": true
				},
				{
					"type": "autodate",
					"name": "updated",
					"onCreate": true,
					"onUpdate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_raffles_status ON raffles (status)"
			],
			"listRule": null,
			"viewRule": null,
			"createRule": null,
			"updateRule": null,
			"deleteRule": null
		}`

		collection := &core.Collection{}
		if err := json.Unmarshal([]byte(jsonData), &collection); err != nil {
			return err
		}

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("pbc_raffles")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_ndeliveries",
			"name": "notification_deliveries",
			"type": "base",
			"system": false,
			"fields": [
				{
					"type": "relation",
					"name": "campaign",
					"required": true,
					"collectionId": "pbc_ncampaigns",
					"maxSelect": 1,
					"cascadeDelete": true
				},
				{
					"type": "relation",
					"name": "customer",
					"required": true,
					"collectionId": "pbc_customers",
					"maxSelect": 1,
					"cascadeDelete": false
				},
				{
					"type": "select",
					"name": "status",
					"required": true,
					"maxSelect": 1,
					"values": ["pending", "ok", "failed"]
				},
				{
					"type": "text",
					"name": "error_text",
					"max": 1000
				},
				{
					"type": "autodate",
					"name": "created",
					"onCreate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_notification_deliveries_campaign ON notification_deliveries (campaign)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_ndeliveries")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

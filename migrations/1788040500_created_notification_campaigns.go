package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_ncampaigns",
			"name": "notification_campaigns",
			"type": "base",
			"system": false,
			"fields": [
				{
					"type": "text",
					"name": "title",
					"required": true,
					"max": 200
				},
				{
					"type": "text",
					"name": "body",
					"required": true,
					"max": 2000
				},
				{
					"type": "select",
					"name": "mode",
					"required": true,
					"maxSelect": 1,
					"values": ["all_users", "raffle_users", "selected_customers", "attempt_status", "multi_raffle_union"]
				},
				{
					"type": "number",
					"name": "recipients",
					"min": 0,
					"onlyInt": true
				},
				{
					"type": "autodate",
					"name": "created",
					"onCreate": true
				}
			],
			"indexes": [],
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
		collection, err := app.FindCollectionByNameOrId("pbc_ncampaigns")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

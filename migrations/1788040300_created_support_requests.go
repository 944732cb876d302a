package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_support_reqs",
			"name": "support_requests",
			"type": "base",
			"system": false,
			"fields": [
				{
					"type": "relation",
					"name": "customer",
					"required": true,
					"collectionId": "pbc_customers",
					"maxSelect": 1,
					"cascadeDelete": false
				},
				{
					"type": "text",
					"name": "subject",
					"max": 200
				},
				{
					"type": "select",
					"name": "status",
					"required": true,
					"maxSelect": 1,
					"values": ["open", "pending", "closed"]
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
				"CREATE INDEX idx_support_requests_status ON support_requests (status)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_support_reqs")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

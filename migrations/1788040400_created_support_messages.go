package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_support_msgs",
			"name": "support_messages",
			"type": "base",
			"system": false,
			"fields": [
				{
					"type": "relation",
					"name": "request",
					"required": true,
					"collectionId": "pbc_support_reqs",
					"maxSelect": 1,
					"cascadeDelete": true
				},
				{
					"type": "select",
					"name": "sender",
					"required": true,
					"maxSelect": 1,
					"values": ["customer", "admin"]
				},
				{
					"type": "text",
					"name": "text",
					"required": true,
					"max": 4000
				},
				{
					"type": "text",
					"name": "client_ref",
					"max": 64
				},
				{
					"type": "autodate",
					"name": "created",
					"onCreate": true
				}
			],
			"indexes": [
				"CREATE INDEX idx_support_messages_request ON support_messages (request)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_support_msgs")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

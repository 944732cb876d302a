package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_customers",
			"name": "customers",
			"type": "auth",
			"system": false,
			"fields": [
				{
					"type": "text",
					"name": "name",
					"required": true,
					"max": 120
				},
				{
					"type": "text",
					"name": "phone",
					"max": 32
				},
				{
					"type": "text",
					"name": "county",
					"max": 64
				},
				{
					"type": "text",
					"name": "push_token",
					"max": 512
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
		collection, err := app.FindCollectionByNameOrId("pbc_customers")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

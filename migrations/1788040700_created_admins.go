package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_admins",
			"name": "admins",
			"type": "auth",
			"system": false,
			"fields": [
				{
					"type": "text",
					"name": "name",
					"max": 120
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
		collection, err := app.FindCollectionByNameOrId("pbc_admins")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

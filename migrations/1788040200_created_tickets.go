package migrations

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		jsonData := `{
			"id": "pbc_tickets",
			"name": "tickets",
			"type": "base",
			"system": false,
			"fields": [
				{
					"type": "relation",
					"name": "raffle",
					"required": true,
					"collectionId": "pbc_raffles",
					"maxSelect": 1,
					"cascadeDelete": false
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
					"type": "number",
					"name": "number",
					"min": 1,
					"onlyInt": true
				},
				{
					"type": "text",
					"name": "ticket_code",
					"max": 64
				},
				{
					"type": "select",
					"name": "payment_status",
					"required": true,
					"maxSelect": 1,
					"values": ["pending", "completed", "failed"]
				},
				{
					"type": "text",
					"name": "payment_intent_id",
					"max": 255
				},
				{
					"type": "text",
					"name": "checkout_session_id",
					"max": 255
				},
				{
					"type": "number",
					"name": "amount",
					"min": 0
				},
				{
					"type": "text",
					"name": "currency",
					"max": 8
				},
				{
					"type": "text",
					"name": "payment_method",
					"max": 64
				},
				{
					"type": "date",
					"name": "completed_at"
				},
				{
					"type": "text",
					"name": "error_text",
					"max": 1000
				},
				{
					"type": "bool",
					"name": "is_winner"
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
				"CREATE INDEX idx_tickets_raffle ON tickets (raffle)",
				"CREATE INDEX idx_tickets_customer ON tickets (customer)",
				"CREATE INDEX idx_tickets_payment_status ON tickets (payment_status)",
				"CREATE INDEX idx_tickets_created ON tickets (created)"
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
		collection, err := app.FindCollectionByNameOrId("pbc_tickets")
		if err != nil {
			return err
		}

		return app.Delete(collection)
	})
}

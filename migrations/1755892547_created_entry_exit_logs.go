package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("entry_exit_logs")

		collection.Fields.Add(
			&core.TextField{Name: "ticket_code", Required: true},
			&core.SelectField{Name: "action", Required: true, MaxSelect: 1, Values: []string{"ENTRY", "EXIT"}},
			&core.TextField{Name: "gate"},
			&core.TextField{Name: "zone_name"},
			&core.DateField{Name: "scanned_at"},
			&core.AutodateField{Name: "created", OnCreate: true},
		)

		collection.AddIndex("idx_logs_ticket_code", false, "ticket_code", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("entry_exit_logs")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("tickets")

		collection.Fields.Add(
			&core.TextField{Name: "code", Required: true},
			&core.TextField{Name: "user_id", Required: true},
			&core.TextField{Name: "user_contact"},
			&core.SelectField{Name: "darshan_type", Required: true, MaxSelect: 1, Values: []string{"GENERAL", "SEEGHRA"}},
			&core.TextField{Name: "date", Required: true},
			&core.TextField{Name: "slot_time", Required: true},
			&core.NumberField{Name: "persons_count", OnlyInt: true, Min: types.Pointer(1.0)},
			&core.JSONField{Name: "pilgrims", MaxSize: 1 << 20},
			&core.SelectField{Name: "status", Required: true, MaxSelect: 1, Values: []string{"BOOKED", "ENTERED", "EXITED", "CANCELLED"}},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_tickets_code", true, "code", "")
		collection.AddIndex("idx_tickets_user", false, "user_id", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("tickets")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

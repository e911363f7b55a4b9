package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("slots")

		collection.Fields.Add(
			&core.TextField{Name: "date", Required: true},
			&core.TextField{Name: "time_range", Required: true},
			&core.SelectField{Name: "darshan_type", Required: true, MaxSelect: 1, Values: []string{"GENERAL", "SEEGHRA"}},
			&core.NumberField{Name: "normal_capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "priority_capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "other_capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "booked_count", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.BoolField{Name: "is_active"},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_slots_date_time_type", true, "date, time_range, darshan_type", "")
		collection.AddIndex("idx_slots_date", false, "date", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("slots")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

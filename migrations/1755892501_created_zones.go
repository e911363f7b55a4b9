package migrations

import (
	"github.com/pocketbase/pocketbase/core"
	m "github.com/pocketbase/pocketbase/migrations"
	"github.com/pocketbase/pocketbase/tools/types"
)

func init() {
	m.Register(func(app core.App) error {
		collection := core.NewBaseCollection("zones")

		collection.Fields.Add(
			&core.TextField{Name: "name", Required: true},
			&core.NumberField{Name: "current_count", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.NumberField{Name: "max_capacity", OnlyInt: true, Min: types.Pointer(0.0)},
			&core.AutodateField{Name: "created", OnCreate: true},
			&core.AutodateField{Name: "updated", OnCreate: true, OnUpdate: true},
		)

		collection.AddIndex("idx_zones_name", true, "name", "")

		return app.Save(collection)
	}, func(app core.App) error {
		collection, err := app.FindCollectionByNameOrId("zones")
		if err != nil {
			return err
		}
		return app.Delete(collection)
	})
}

package model_test

import (
	"errors"
	"testing"

	"github.com/okian/hackbite/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestSettings(t *testing.T) {
	convey.Convey("Given typed settings", t, func() {
		convey.Convey("When parsing the setting type", func() {
			st, err := model.ParseSettingType("")
			convey.So(err, convey.ShouldBeNil)
			convey.So(st, convey.ShouldEqual, model.SettingString)

			_, err = model.ParseSettingType("float")
			convey.So(errors.Is(err, model.ErrInvalidSettingType), convey.ShouldBeTrue)
		})

		convey.Convey("When an integer round-trips", func() {
			raw, err := model.EncodeSetting(float64(42), model.SettingInteger)
			convey.So(err, convey.ShouldBeNil)
			convey.So(raw, convey.ShouldEqual, "42")

			v, err := model.DecodeSetting(raw, model.SettingInteger)
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldEqual, int64(42))
		})

		convey.Convey("When a boolean is stored", func() {
			raw, err := model.EncodeSetting(true, model.SettingBoolean)
			convey.So(err, convey.ShouldBeNil)
			convey.So(raw, convey.ShouldEqual, "true")

			v, _ := model.DecodeSetting("TRUE", model.SettingBoolean)
			convey.So(v, convey.ShouldEqual, true)
			v, _ = model.DecodeSetting("no", model.SettingBoolean)
			convey.So(v, convey.ShouldEqual, false)
		})

		convey.Convey("When a json value is stored", func() {
			raw, err := model.EncodeSetting(map[string]any{"max": float64(5)}, model.SettingJSON)
			convey.So(err, convey.ShouldBeNil)
			convey.So(raw, convey.ShouldEqual, `{"max":5}`)

			v, err := model.DecodeSetting(raw, model.SettingJSON)
			convey.So(err, convey.ShouldBeNil)
			convey.So(v, convey.ShouldResemble, map[string]any{"max": float64(5)})
		})

		convey.Convey("When stored integer text is corrupt", func() {
			_, err := model.DecodeSetting("abc", model.SettingInteger)
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestTeamStatus(t *testing.T) {
	convey.Convey("Given team states", t, func() {
		convey.So(model.TeamForming.Valid(), convey.ShouldBeTrue)
		convey.So(model.TeamClosed.Valid(), convey.ShouldBeTrue)
		convey.So(model.TeamStatus("archived").Valid(), convey.ShouldBeFalse)
	})

	convey.Convey("Given team updates", t, func() {
		convey.So(model.TeamUpdate{}.Empty(), convey.ShouldBeTrue)
		name := "renamed"
		convey.So(model.TeamUpdate{Name: &name}.Empty(), convey.ShouldBeFalse)
	})
}

func TestJobStatus(t *testing.T) {
	convey.Convey("Given rating job states", t, func() {
		convey.So(model.JobQueued.Terminal(), convey.ShouldBeFalse)
		convey.So(model.JobRunning.Terminal(), convey.ShouldBeFalse)
		convey.So(model.JobCompleted.Terminal(), convey.ShouldBeTrue)
		convey.So(model.JobFailed.Terminal(), convey.ShouldBeTrue)
	})
}

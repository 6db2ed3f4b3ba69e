package businesshourshandler

import (
	"context"
	"testing"
	"time"

	"mailpilot-backend/models"
	dbmodels "mailpilot-backend/models/db"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type fakeSettingsStore struct {
	values map[models.SpaceSettingCode]string
	err    error
}

func (f *fakeSettingsStore) Create(rec dbmodels.SpaceSetting) error   { return nil }
func (f *fakeSettingsStore) Update(spaceID, code, value string) error { return nil }
func (f *fakeSettingsStore) List(spaceID string) ([]dbmodels.SpaceSetting, error) {
	return nil, nil
}
func (f *fakeSettingsStore) GetValueByCode(spaceID string, code models.SpaceSettingCode) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.values[code], nil
}

func TestIsBusinessHours(t *testing.T) {
	// Wednesday
	midweek := func(hour, minute int) time.Time {
		return time.Date(2026, 9, 2, hour, minute, 0, 0, time.UTC)
	}

	t.Run(`a weekday inside the window qualifies`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{})

		ok, err := handler.IsBusinessHours(context.Background(), "space-1", midweek(12, 0))
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run(`weekends never qualify`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{})
		saturday := time.Date(2026, 9, 5, 12, 0, 0, 0, time.UTC)

		ok, err := handler.IsBusinessHours(context.Background(), "space-1", saturday)
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run(`the window start is inclusive and the end is exclusive`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{})

		ok, err := handler.IsBusinessHours(context.Background(), "space-1", midweek(9, 0))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = handler.IsBusinessHours(context.Background(), "space-1", midweek(18, 0))
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = handler.IsBusinessHours(context.Background(), "space-1", midweek(8, 59))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run(`the space timezone shifts the window`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{values: map[models.SpaceSettingCode]string{
			models.TimezoneSetting: "America/New_York",
		}})

		// 14:00 UTC is 10:00 in New York in September
		ok, err := handler.IsBusinessHours(context.Background(), "space-1", midweek(14, 0))
		require.NoError(t, err)
		require.True(t, ok)

		// 02:00 UTC is 22:00 the previous evening in New York
		ok, err = handler.IsBusinessHours(context.Background(), "space-1", midweek(2, 0))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run(`custom window edges are honoured`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{values: map[models.SpaceSettingCode]string{
			models.WorkdayStartSetting: "07:30",
			models.WorkdayEndSetting:   "16:00",
		}})

		ok, err := handler.IsBusinessHours(context.Background(), "space-1", midweek(7, 45))
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = handler.IsBusinessHours(context.Background(), "space-1", midweek(16, 30))
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run(`an unknown timezone is an error`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{values: map[models.SpaceSettingCode]string{
			models.TimezoneSetting: "Atlantis/Capital",
		}})

		_, err := handler.IsBusinessHours(context.Background(), "space-1", midweek(12, 0))
		require.Error(t, err)
	})

	t.Run(`a bad window value is an error`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{values: map[models.SpaceSettingCode]string{
			models.WorkdayStartSetting: "soon",
		}})

		_, err := handler.IsBusinessHours(context.Background(), "space-1", midweek(12, 0))
		require.Error(t, err)
	})

	t.Run(`a settings read failure is propagated`, func(t *testing.T) {
		handler := NewInstanceWithStore(&fakeSettingsStore{err: errors.New("connection refused")})

		_, err := handler.IsBusinessHours(context.Background(), "space-1", midweek(12, 0))
		require.Error(t, err)
	})
}

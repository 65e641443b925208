package form

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/profile-setup/internal/model"
)

type recorded struct {
	field model.Field
	view  model.ProfileView
}

func record(f *Form) (*[]recorded, func()) {
	var (
		mu  sync.Mutex
		got []recorded
	)
	unsub := f.Subscribe(func(field model.Field, view model.ProfileView) {
		mu.Lock()
		got = append(got, recorded{field: field, view: view})
		mu.Unlock()
	})
	return &got, unsub
}

func TestFormStartsEmpty(t *testing.T) {
	f := New("view-1")
	view := f.View()

	assert.Equal(t, "view-1", view.ID)
	assert.Empty(t, view.Major)
	assert.Empty(t, view.Year)
	assert.Equal(t, model.StatusEmpty, view.Status)
	assert.Empty(t, view.StatusText)
}

func TestFormKeystrokesConcatenate(t *testing.T) {
	f := New("view-1")

	typed := ""
	for _, r := range "Computer Science" {
		typed += string(r)
		require.NoError(t, f.Set(model.FieldMajor, typed))
		assert.Equal(t, typed, f.View().Major)
	}

	typed = ""
	for _, r := range "2nd" {
		typed += string(r)
		require.NoError(t, f.Set(model.FieldYear, typed))
	}
	assert.Equal(t, "2nd", f.View().Year)
	assert.Equal(t, "Computer Science", f.View().Major)
}

func TestFormAcceptsAnyString(t *testing.T) {
	f := New("view-1")

	for _, v := range []string{"CS", "", "  padded  ", "<b>&amp;</b>", "数学", "\n"} {
		require.NoError(t, f.Set(model.FieldMajor, v))
		assert.Equal(t, v, f.View().Major)
	}
}

func TestFormRejectsUnknownField(t *testing.T) {
	f := New("view-1")

	err := f.Set(model.FieldStatus, "success")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Equal(t, model.StatusEmpty, f.View().Status)
}

func TestFormNotifiesObserversSynchronously(t *testing.T) {
	f := New("view-1")
	got, unsub := record(f)
	defer unsub()

	require.NoError(t, f.Set(model.FieldMajor, "C"))
	require.Len(t, *got, 1, "observer must run before Set returns")
	assert.Equal(t, model.FieldMajor, (*got)[0].field)
	assert.Equal(t, "C", (*got)[0].view.Major)

	require.NoError(t, f.Set(model.FieldYear, "2"))
	require.Len(t, *got, 2)
	assert.Equal(t, model.FieldYear, (*got)[1].field)
	assert.Equal(t, "C", (*got)[1].view.Major)
	assert.Equal(t, "2", (*got)[1].view.Year)
}

func TestFormSkipsNotificationWhenValueUnchanged(t *testing.T) {
	f := New("view-1")
	require.NoError(t, f.Set(model.FieldMajor, "CS"))

	got, unsub := record(f)
	defer unsub()

	require.NoError(t, f.Set(model.FieldMajor, "CS"))
	assert.Empty(t, *got)
}

func TestFormUnsubscribe(t *testing.T) {
	f := New("view-1")
	got, unsub := record(f)
	assert.Equal(t, 1, f.Subscribers())

	unsub()
	unsub()
	assert.Equal(t, 0, f.Subscribers())

	require.NoError(t, f.Set(model.FieldMajor, "CS"))
	assert.Empty(t, *got)
}

func TestFormObserversRunInSubscriptionOrder(t *testing.T) {
	f := New("view-1")
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		f.Subscribe(func(model.Field, model.ProfileView) { order = append(order, i) })
	}

	require.NoError(t, f.Set(model.FieldYear, "1"))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}

func TestFormBeginSetsSendingBeforeReturning(t *testing.T) {
	f := New("view-1")
	require.NoError(t, f.Set(model.FieldMajor, "CS"))
	require.NoError(t, f.Set(model.FieldYear, "2"))
	got, unsub := record(f)
	defer unsub()

	profile, seq := f.Begin()

	assert.Equal(t, model.Profile{Major: "CS", Year: "2"}, profile)
	assert.Equal(t, uint64(1), seq)
	assert.Equal(t, model.StatusSending, f.View().Status)
	assert.Equal(t, "Sending...", f.View().StatusText)
	require.Len(t, *got, 1)
	assert.Equal(t, model.FieldStatus, (*got)[0].field)
}

func TestFormCompleteAppliesOnlyLatestSubmission(t *testing.T) {
	f := New("view-1")

	_, first := f.Begin()
	_, second := f.Begin()

	assert.True(t, f.Complete(second, model.StatusSuccess))
	assert.False(t, f.Complete(first, model.StatusNetworkFailure))
	assert.Equal(t, model.StatusSuccess, f.View().Status)
}

func TestFormCompleteLeavesFieldsUntouched(t *testing.T) {
	f := New("view-1")
	require.NoError(t, f.Set(model.FieldMajor, "Math"))
	require.NoError(t, f.Set(model.FieldYear, "4"))

	_, seq := f.Begin()
	require.True(t, f.Complete(seq, model.StatusResponseFailure))

	view := f.View()
	assert.Equal(t, "Math", view.Major)
	assert.Equal(t, "4", view.Year)
	assert.Equal(t, "❌ Failed to send.", view.StatusText)
}

func TestFormTracksLastTouched(t *testing.T) {
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := newForm("view-1", func() time.Time { return clock })
	assert.Equal(t, clock, f.LastTouched())

	clock = clock.Add(time.Minute)
	require.NoError(t, f.Set(model.FieldMajor, "CS"))
	assert.Equal(t, clock, f.LastTouched())
}

func TestParseField(t *testing.T) {
	tests := []struct {
		name    string
		want    model.Field
		wantErr bool
	}{
		{name: "major", want: model.FieldMajor},
		{name: "year", want: model.FieldYear},
		{name: "status", wantErr: true},
		{name: "", wantErr: true},
		{name: "Major", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseField(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownField)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

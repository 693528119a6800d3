package icsstore

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"cal-sync/core/calendar"
	"cal-sync/core/storage/mocks"

	"github.com/jonboulle/clockwork"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const workICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"X-WR-CALNAME:Work\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:standup\r\n" +
	"DTSTAMP:20240501T000000Z\r\n" +
	"DTSTART:20240506T090000Z\r\n" +
	"DTEND:20240506T093000Z\r\n" +
	"SUMMARY:Standup\r\n" +
	"LOCATION:Room 1\r\n" +
	"TRANSP:OPAQUE\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:offsite\r\n" +
	"DTSTAMP:20240501T000000Z\r\n" +
	"DTSTART;VALUE=DATE:20240507\r\n" +
	"DTEND;VALUE=DATE:20240508\r\n" +
	"SUMMARY:Offsite\r\n" +
	"X-MICROSOFT-CDO-BUSYSTATUS:OOF\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:gym\r\n" +
	"DTSTAMP:20240501T000000Z\r\n" +
	"DTSTART;TZID=Europe/Berlin:20240506T180000\r\n" +
	"DTEND;TZID=Europe/Berlin:20240506T190000\r\n" +
	"RRULE:FREQ=DAILY;COUNT=3\r\n" +
	"SUMMARY:Gym\r\n" +
	"TRANSP:TRANSPARENT\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

const personalICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"X-WR-CALNAME:Personal\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:dentist\r\n" +
	"DTSTAMP:20240501T000000Z\r\n" +
	"DTSTART:20240506T120000Z\r\n" +
	"DTEND:20240506T130000Z\r\n" +
	"SUMMARY:Dentist\r\n" +
	"X-CUSTOM:keep-me\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

const teamICS = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//test//EN\r\n" +
	"X-WR-CALNAME:Team\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:planning\r\n" +
	"DTSTAMP:20260301T000000Z\r\n" +
	"DTSTART;TZID=Europe/Berlin:20260302T090000\r\n" +
	"DTEND;TZID=Europe/Berlin:20260302T100000\r\n" +
	"RRULE:FREQ=WEEKLY\r\n" +
	"EXDATE;TZID=Europe/Berlin:20260413T090000,20260420T090000\r\n" +
	"SUMMARY:Planning\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

var (
	day      = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	testCfg  = Config{Bucket: "calendars", Prefix: "calendars"}
	work     = calendar.Collection{ID: "work", Title: "Work", Account: "calendars"}
	personal = calendar.Collection{ID: "personal", Title: "Personal", Account: "calendars"}
)

// objects is an in-memory storage.Client.
type objects struct {
	mu   sync.Mutex
	data map[string]string
	puts int
}

func newObjects(kv ...string) *objects {
	o := &objects{data: make(map[string]string)}
	for i := 0; i+1 < len(kv); i += 2 {
		o.data[kv[i]] = kv[i+1]
	}
	return o
}

func (o *objects) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	return true, nil
}

func (o *objects) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	return nil
}

func (o *objects) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.data[objectName] = string(data)
	o.puts++
	return minio.UploadInfo{Key: objectName, Size: int64(len(data))}, nil
}

func (o *objects) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	v, ok := o.data[objectName]
	if !ok {
		return nil, minio.ErrorResponse{Code: "NoSuchKey", StatusCode: 404}
	}
	return io.NopCloser(strings.NewReader(v)), nil
}

func (o *objects) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	var infos []minio.ObjectInfo
	for k := range o.data {
		if strings.HasPrefix(k, opts.Prefix) {
			infos = append(infos, minio.ObjectInfo{Key: k})
		}
	}
	return mocks.Objects(infos...)
}

func newTestStore(o *objects) *Store {
	return New(o, testCfg, nil, clockwork.NewFakeClockAt(day))
}

func seeded() *objects {
	return newObjects("calendars/work.ics", workICS, "calendars/personal.ics", personalICS, "calendars/readme.txt", "x")
}

func TestStore_ListCollections(t *testing.T) {
	s := newTestStore(seeded())

	got, err := s.ListCollections(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []calendar.Collection{personal, work}, got)
}

func TestStore_FetchEntries(t *testing.T) {
	s := newTestStore(seeded())

	got, err := s.FetchEntries(context.Background(), work, day, day.AddDate(0, 0, 7))
	require.NoError(t, err)
	require.Len(t, got, 5)

	standup := got[0]
	assert.Equal(t, "standup", standup.ID)
	assert.Equal(t, "work", standup.CollectionID)
	assert.True(t, standup.Start.Equal(day.Add(9*time.Hour)))
	assert.True(t, standup.End.Equal(day.Add(9*time.Hour+30*time.Minute)))
	assert.Equal(t, "Standup", standup.Title)
	assert.Equal(t, "Room 1", standup.Location)
	assert.Equal(t, calendar.AvailabilityBusy, standup.Availability)
	assert.False(t, standup.AllDay)

	// Berlin is UTC+2 in May.
	gym := got[1]
	assert.Equal(t, "gym", gym.ID)
	assert.True(t, gym.Start.Equal(day.Add(16*time.Hour)))
	assert.Equal(t, calendar.AvailabilityFree, gym.Availability)
	assert.Equal(t, "FREQ=DAILY;COUNT=3", gym.Recurrence)

	offsite := got[2]
	assert.Equal(t, "offsite", offsite.ID)
	assert.True(t, offsite.AllDay)
	assert.True(t, offsite.Start.Equal(day.AddDate(0, 0, 1)))
	assert.True(t, offsite.End.Equal(day.AddDate(0, 0, 2)))
	assert.Equal(t, calendar.AvailabilityUnavailable, offsite.Availability)

	assert.Equal(t, "gym", got[3].ID)
	assert.Equal(t, "gym", got[4].ID)
}

func TestStore_RecurringSeriesAcrossDST(t *testing.T) {
	ctx := context.Background()
	o := newObjects("calendars/team.ics", teamICS, "calendars/personal.ics", personalICS)
	s := newTestStore(o)
	team := calendar.Collection{ID: "team", Title: "Team", Account: "calendars"}
	from := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 25, 0, 0, 0, 0, time.UTC)

	got, err := s.FetchEntries(ctx, team, from, to)
	require.NoError(t, err)
	require.Len(t, got, 1, "13 and 20 April are excluded")
	occ := got[0]
	assert.Equal(t, "Europe/Berlin", occ.Start.Location().String())
	assert.Equal(t, 9, occ.Start.Hour())
	assert.True(t, occ.Start.Equal(time.Date(2026, 4, 6, 7, 0, 0, 0, time.UTC)))
	require.Len(t, occ.Exceptions, 2)

	created, err := s.CreateEntry(ctx, personal)
	require.NoError(t, err)
	created.Start, created.End = occ.Start, occ.End
	created.Title = occ.Title
	created.Recurrence = occ.Recurrence
	created.Exceptions = occ.Exceptions
	require.NoError(t, s.SaveEntry(ctx, created, true))

	body := o.data["calendars/personal.ics"]
	assert.Contains(t, body, "DTSTART;TZID=Europe/Berlin:20260406T090000")
	assert.Contains(t, body, "DTEND;TZID=Europe/Berlin:20260406T100000")
	assert.Contains(t, body, "EXDATE;TZID=Europe/Berlin:20260413T090000")
	assert.Contains(t, body, "EXDATE;TZID=Europe/Berlin:20260420T090000")

	copies, err := s.FetchEntries(ctx, personal, from, to)
	require.NoError(t, err)
	require.Len(t, copies, 1)
	assert.Equal(t, created.ID, copies[0].ID)
	assert.True(t, copies[0].Start.Equal(occ.Start))
}

func TestStore_FetchMissingCalendar(t *testing.T) {
	s := newTestStore(newObjects())

	_, err := s.FetchEntries(context.Background(), work, day, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, calendar.ErrBackendCommunication)
}

func TestStore_StagedSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	o := seeded()
	s := newTestStore(o)

	created, err := s.CreateEntry(ctx, personal)
	require.NoError(t, err)
	created.Start = day.Add(15 * time.Hour)
	created.End = day.Add(16 * time.Hour)
	created.Title = "Standup"
	created.Availability = calendar.AvailabilityTentative
	created.Marker = "cal-sync:abc:standup"
	require.NoError(t, s.SaveEntry(ctx, created, false))

	assert.Equal(t, 0, o.puts)
	require.NoError(t, s.CommitBatch(ctx))
	assert.Equal(t, 1, o.puts)

	got, err := s.FetchEntries(ctx, personal, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 2)
	copied := got[1]
	assert.Equal(t, created.ID, copied.ID)
	assert.Equal(t, "Standup", copied.Title)
	assert.Equal(t, "cal-sync:abc:standup", copied.Marker)
	assert.Equal(t, calendar.AvailabilityTentative, copied.Availability)

	// The foreign event keeps its custom property.
	assert.Contains(t, o.data["calendars/personal.ics"], "X-CUSTOM:keep-me")

	require.NoError(t, s.DeleteEntry(ctx, &copied, false))
	require.NoError(t, s.CommitBatch(ctx))
	got, err = s.FetchEntries(ctx, personal, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "dentist", got[0].ID)
}

func TestStore_UpdateKeepsUnmanagedProperties(t *testing.T) {
	ctx := context.Background()
	o := seeded()
	s := newTestStore(o)

	got, err := s.FetchEntries(ctx, personal, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	require.Len(t, got, 1)

	entry := got[0]
	entry.Title = "Dentist (moved)"
	entry.Notes = ""
	require.NoError(t, s.SaveEntry(ctx, &entry, true))

	assert.Equal(t, 1, o.puts)
	body := o.data["calendars/personal.ics"]
	assert.Contains(t, body, "X-CUSTOM:keep-me")
	assert.Contains(t, body, "SUMMARY:Dentist (moved)")
	assert.Equal(t, 1, strings.Count(body, "BEGIN:VEVENT"))
}

func TestStore_ResetDiscardsStagedWork(t *testing.T) {
	ctx := context.Background()
	o := seeded()
	s := newTestStore(o)

	entry := calendar.Entry{ID: "dentist", CollectionID: "personal"}
	require.NoError(t, s.DeleteEntry(ctx, &entry, false))
	require.NoError(t, s.Reset(ctx))
	require.NoError(t, s.CommitBatch(ctx))

	assert.Equal(t, 0, o.puts)
	assert.Equal(t, personalICS, o.data["calendars/personal.ics"])
}

func TestStore_DeleteUnknownEntry(t *testing.T) {
	s := newTestStore(seeded())

	err := s.DeleteEntry(context.Background(), &calendar.Entry{ID: "nope", CollectionID: "personal"}, false)
	assert.ErrorIs(t, err, calendar.ErrEntryNotFound)
}

func TestStore_AcquireAccess(t *testing.T) {
	ctx := context.Background()

	t.Run("BucketPresent", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "calendars").Return(true, nil)

		s := New(m, testCfg, nil, nil)
		assert.NoError(t, s.AcquireAccess(ctx, time.Second))
	})

	t.Run("BucketMissing", func(t *testing.T) {
		m := new(mocks.Client)
		m.On("BucketExists", mock.Anything, "calendars").Return(false, nil)

		s := New(m, testCfg, nil, nil)
		assert.ErrorIs(t, s.AcquireAccess(ctx, time.Second), calendar.ErrAuthorizationDenied)
	})
}

func TestStore_UploadFailure(t *testing.T) {
	ctx := context.Background()
	m := new(mocks.Client)
	m.On("GetObject", mock.Anything, "calendars", "calendars/personal.ics", mock.Anything).
		Return(io.NopCloser(bytes.NewReader([]byte(personalICS))), nil).Once()
	m.On("PutObject", mock.Anything, "calendars", "calendars/personal.ics", mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("quota exceeded"))

	s := New(m, testCfg, nil, nil)
	entry := calendar.Entry{ID: "dentist", CollectionID: "personal"}
	require.NoError(t, s.DeleteEntry(ctx, &entry, false))

	err := s.CommitBatch(ctx)
	assert.ErrorIs(t, err, calendar.ErrBackendCommunication)
	m.AssertExpectations(t)
}

func TestStore_ListError(t *testing.T) {
	m := new(mocks.Client)
	m.On("ListObjects", mock.Anything, "calendars", mock.Anything).
		Return(mocks.Objects(minio.ObjectInfo{Err: errors.New("access denied")}))

	s := New(m, testCfg, nil, nil)
	_, err := s.ListCollections(context.Background())
	assert.ErrorIs(t, err, calendar.ErrBackendCommunication)
}

func TestStore_CommitMode(t *testing.T) {
	assert.Equal(t, calendar.CommitAtomic, newTestStore(newObjects()).CommitMode())
	assert.Equal(t, "calendars/work.ics", newTestStore(newObjects()).ObjectName("work"))
}

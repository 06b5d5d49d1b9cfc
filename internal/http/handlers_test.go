package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/train-scheduler/internal/application"
	"github.com/example/train-scheduler/internal/timeofday"
)

type scheduleServiceStub struct {
	addErr     error
	addTrain   string
	addTimes   []string
	addCalls   int
	entries    []application.ScheduleEntry
	getErr     error
	getTrain   string
	collisions []application.ScheduleEntry
	nextErr    error
}

func (s *scheduleServiceStub) AddSchedule(_ context.Context, train string, times []string) error {
	s.addCalls++
	s.addTrain = train
	s.addTimes = times
	return s.addErr
}

func (s *scheduleServiceStub) GetSchedule(_ context.Context, train string) ([]application.ScheduleEntry, error) {
	s.getTrain = train
	return s.entries, s.getErr
}

func (s *scheduleServiceStub) GetNextSchedule(context.Context) ([]application.ScheduleEntry, error) {
	return s.collisions, s.nextErr
}

type trainServiceStub struct {
	trains []application.Train
	err    error
}

func (s *trainServiceStub) ListTrains(context.Context) ([]application.Train, error) {
	return s.trains, s.err
}

func (s *trainServiceStub) GetTrain(_ context.Context, name string) (application.Train, error) {
	if s.err != nil {
		return application.Train{}, s.err
	}
	for _, train := range s.trains {
		if train.Name == name {
			return train, nil
		}
	}
	return application.Train{}, fmt.Errorf("%w %q", application.ErrTrainNotFound, name)
}

var fulton = application.Station{ID: 1, Name: "Fulton Street"}

func entry(id int64, name string, hour, minute int) application.ScheduleEntry {
	return application.ScheduleEntry{
		Train:       application.Train{ID: id, Name: name},
		Station:     fulton,
		ArrivalTime: timeofday.MustNew(hour, minute),
	}
}

func newTestRouter(schedules scheduleService, trains trainService) http.Handler {
	return NewRouter(RouterConfig{
		Schedules: NewScheduleHandler(schedules, nil),
		Trains:    NewTrainHandler(trains, nil),
	})
}

func serve(t *testing.T, handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestScheduleHandlers_Create(t *testing.T) {
	t.Parallel()

	t.Run("records arrivals", func(t *testing.T) {
		t.Parallel()
		stub := &scheduleServiceStub{}
		rec := serve(t, newTestRouter(stub, nil), http.MethodPost, "/schedules",
			`{"train_name":" LIRR ","arrival_times":["0930","2250"]}`)

		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, " LIRR ", stub.addTrain)
		assert.Equal(t, []string{"0930", "2250"}, stub.addTimes)

		got := decodeBody[scheduleCreatedResponse](t, rec)
		assert.Equal(t, scheduleCreatedResponse{TrainName: "LIRR", Count: 2}, got)
	})

	t.Run("rejects malformed bodies before calling the service", func(t *testing.T) {
		t.Parallel()
		for _, body := range []string{
			`{"train_name":`,
			`{"arrival_times":["0930"]}`,
			`{"train_name":"LIRR"}`,
			`{"train_name":"LIRR","arrival_times":["0930"],"extra":1}`,
		} {
			stub := &scheduleServiceStub{}
			rec := serve(t, newTestRouter(stub, nil), http.MethodPost, "/schedules", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code, body)
			assert.Zero(t, stub.addCalls, body)
			assert.NotEmpty(t, decodeBody[errorResponse](t, rec).Message)
		}
	})

	t.Run("passes an empty list to the service", func(t *testing.T) {
		t.Parallel()
		stub := &scheduleServiceStub{addErr: &application.ValidationError{
			FieldErrors: map[string]string{"arrival_times": "at least one arrival time is required"},
		}}
		rec := serve(t, newTestRouter(stub, nil), http.MethodPost, "/schedules",
			`{"train_name":"LIRR","arrival_times":[]}`)

		require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		assert.Equal(t, 1, stub.addCalls)
		got := decodeBody[errorResponse](t, rec)
		assert.Equal(t, "少なくとも 1 件の到着時刻を指定してください。", got.Errors["arrival_times"])
	})

	t.Run("maps service errors to statuses", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name string
			err  error
			want int
			code string
		}{
			{
				name: "unknown train",
				err:  fmt.Errorf("%w %q", application.ErrTrainNotFound, "ZZZZ"),
				want: http.StatusNotFound,
				code: "train_not_found",
			},
			{
				name: "duplicate",
				err:  &application.DuplicateScheduleError{Train: "LIRR", ArrivalTime: timeofday.MustNew(9, 30)},
				want: http.StatusConflict,
				code: "duplicate_schedule",
			},
			{
				name: "store failure",
				err:  errors.New("disk on fire"),
				want: http.StatusInternalServerError,
			},
		}

		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				stub := &scheduleServiceStub{addErr: tt.err}
				rec := serve(t, newTestRouter(stub, nil), http.MethodPost, "/schedules",
					`{"train_name":"LIRR","arrival_times":["0930"]}`)
				require.Equal(t, tt.want, rec.Code)
				got := decodeBody[errorResponse](t, rec)
				assert.Equal(t, tt.code, got.ErrorCode)
				assert.NotContains(t, got.Message, "disk on fire")
			})
		}
	})

	t.Run("duplicate message names train and time", func(t *testing.T) {
		t.Parallel()
		stub := &scheduleServiceStub{addErr: &application.DuplicateScheduleError{
			Train: "LIRR", ArrivalTime: timeofday.MustNew(9, 30),
		}}
		rec := serve(t, newTestRouter(stub, nil), http.MethodPost, "/schedules",
			`{"train_name":"LIRR","arrival_times":["0930"]}`)
		got := decodeBody[errorResponse](t, rec)
		assert.Contains(t, got.Message, "LIRR")
		assert.Contains(t, got.Message, "09:30:00")
	})
}

func TestScheduleHandlers_Get(t *testing.T) {
	t.Parallel()

	stub := &scheduleServiceStub{entries: []application.ScheduleEntry{
		entry(3, "LIRR", 22, 50),
		entry(3, "LIRR", 9, 30),
	}}
	rec := serve(t, newTestRouter(stub, nil), http.MethodGet, "/schedules/LIRR", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LIRR", stub.getTrain)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	got := decodeBody[scheduleListResponse](t, rec)
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "22:50:00", got.Items[0].ArrivalTime)
	assert.Equal(t, "09:30:00", got.Items[1].ArrivalTime)
	assert.Equal(t, trainDTO{ID: 3, Name: "LIRR"}, got.Items[0].Train)
	assert.Equal(t, stationDTO{ID: 1, Name: "Fulton Street"}, got.Items[0].Station)
}

func TestScheduleHandlers_GetEmptyScheduleRendersEmptyItems(t *testing.T) {
	t.Parallel()

	rec := serve(t, newTestRouter(&scheduleServiceStub{}, nil), http.MethodGet, "/schedules/PATH", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":0,"items":[]}`, rec.Body.String())
}

func TestScheduleHandlers_Next(t *testing.T) {
	t.Parallel()

	stub := &scheduleServiceStub{collisions: []application.ScheduleEntry{
		entry(2, "ABCD", 9, 30),
		entry(3, "LIRR", 9, 30),
	}}
	rec := serve(t, newTestRouter(stub, nil), http.MethodGet, "/next", "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[scheduleListResponse](t, rec)
	require.Equal(t, 2, got.Count)
	assert.Equal(t, "ABCD", got.Items[0].Train.Name)
	assert.Equal(t, "LIRR", got.Items[1].Train.Name)

	failing := &scheduleServiceStub{nextErr: context.DeadlineExceeded}
	rec = serve(t, newTestRouter(failing, nil), http.MethodGet, "/next", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTrainHandlers(t *testing.T) {
	t.Parallel()

	trains := &trainServiceStub{trains: []application.Train{{ID: 2, Name: "ABCD"}, {ID: 1, Name: "tomo"}}}
	router := newTestRouter(nil, trains)

	rec := serve(t, router, http.MethodGet, "/trains", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2,"items":[{"id":2,"name":"ABCD"},{"id":1,"name":"tomo"}]}`, rec.Body.String())

	rec = serve(t, router, http.MethodGet, "/trains/tomo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"id":1,"name":"tomo"}`, rec.Body.String())

	rec = serve(t, router, http.MethodGet, "/trains/ZZZZ", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&scheduleServiceStub{}, &trainServiceStub{})

	tests := []struct {
		method string
		path   string
		status int
		allow  string
	}{
		{method: http.MethodGet, path: "/schedules", status: http.StatusMethodNotAllowed, allow: http.MethodPost},
		{method: http.MethodPost, path: "/schedules/LIRR", status: http.StatusMethodNotAllowed, allow: http.MethodGet},
		{method: http.MethodDelete, path: "/next", status: http.StatusMethodNotAllowed, allow: http.MethodGet},
		{method: http.MethodPost, path: "/trains", status: http.StatusMethodNotAllowed, allow: http.MethodGet},
		{method: http.MethodGet, path: "/schedules/", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/schedules/LIRR/extra", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/trains/", status: http.StatusNotFound},
		{method: http.MethodGet, path: "/unknown", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		rec := serve(t, router, tt.method, tt.path, "")
		assert.Equal(t, tt.status, rec.Code, "%s %s", tt.method, tt.path)
		assert.Equal(t, tt.allow, rec.Header().Get("Allow"), "%s %s", tt.method, tt.path)
	}
}

func TestRouter_AppliesMiddlewareInOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	router := NewRouter(RouterConfig{
		Schedules:  NewScheduleHandler(&scheduleServiceStub{}, nil),
		Middleware: []func(http.Handler) http.Handler{mark("outer"), nil, mark("inner")},
	})
	serve(t, router, http.MethodGet, "/next", "")

	assert.Equal(t, []string{"outer", "inner"}, order)
}

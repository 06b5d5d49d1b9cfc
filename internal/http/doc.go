// Package http provides HTTP handlers and middleware for the train schedule API.
//
// The router exposes the following endpoints:
//   - POST /schedules: records arrivals for a train. Body:
//     {"train_name","arrival_times":["HHMM",...]}. Responds 201 with
//     {"train":{"id","name"},"count"} once every time has been stored.
//   - GET /schedules/{train}: the train's arrivals starting with the next one
//     due today. Response: {"count","items":[scheduleEntryDTO...]}.
//   - GET /next: arrivals at which two or more trains are due at the station
//     at the same time, starting with the next such moment. Same envelope.
//   - GET /trains, GET /trains/{train}: the read-only train roster.
//
// Failures use the errorResponse payload defined in responder.go. Request and
// response DTOs live alongside their respective handlers.
package http

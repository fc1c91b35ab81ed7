package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/GianlucaGuarini/go-observable"

	"boscoin.io/gasmanager/lib/common/observer"
	"boscoin.io/gasmanager/lib/errors"
)

// EventStream writes every observed event as one json line of a chunked
// response until the client goes away.
type EventStream struct {
	contentType string
	renderFunc  RenderFunc
	request     *http.Request
	writer      http.ResponseWriter
	flusher     http.Flusher
	err         error
	rendered    bool
	stop        chan struct{}
}

type RenderFunc func(v interface{}) ([]byte, error)

var RenderJSONFunc = func(v interface{}) ([]byte, error) {
	if v == nil {
		return []byte{}, nil
	}
	return json.Marshal(v)
}

// NewEventStream makes *EventStream and checks http.Flusher by type assertion.
func NewEventStream(w http.ResponseWriter, r *http.Request, renderFunc RenderFunc, ct string) *EventStream {
	es := &EventStream{
		request:     r,
		writer:      w,
		renderFunc:  renderFunc,
		contentType: ct,
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		es.err = fmt.Errorf("http: can't do chunked response")
	} else {
		es.flusher = flusher
	}

	return es
}

func (s *EventStream) write(b []byte) {
	if !s.rendered {
		s.writer.Header().Set("Content-Type", s.contentType)
		s.rendered = true
	}

	fmt.Fprintf(s.writer, "%s\n", b)
	s.flusher.Flush()
}

// Render writes `v` as one chunk and flushes it.
func (s *EventStream) Render(v interface{}) {
	if s.err != nil {
		return
	}

	payload, err := s.renderFunc(v)
	if err != nil {
		payload = s.errMessage(err)
	}
	s.write(payload)
}

// Run start observing events.
func (s *EventStream) Run(ob *observable.Observable, events ...string) {
	s.Start(ob, events...)()
}

// Start registers the listener and returns the func which writes the
// events; events triggered between the two are kept.
func (s *EventStream) Start(ob *observable.Observable, events ...string) func() {
	if s.err != nil {
		WriteJSONError(s.writer, errors.NotImplemented.Clone().SetData("error", s.err.Error()))
		return func() {}
	}

	event := strings.Join(events, " ")
	msg := make(chan []byte)
	s.stop = make(chan struct{})

	onFunc := func(e observer.Event) {
		payload, err := s.renderFunc(e)
		if err != nil {
			payload = s.errMessage(err)
		}

		select {
		case msg <- payload:
		case <-s.stop:
		}
	}
	ob.On(event, onFunc)

	return func() {
		defer ob.Off(event, onFunc)

		for {
			select {
			case payload := <-msg:
				s.write(payload)
			case <-s.request.Context().Done():
				close(s.stop)
				return
			}
		}
	}
}

func (s *EventStream) errMessage(err error) []byte {
	b, merr := json.Marshal(NewErrorProblem(err, StatusCode(err)))
	if merr != nil {
		return []byte{}
	}
	return b
}

// EventsHandler streams the governance events; `?event=` selects names and
// may be repeated or comma separated, nothing means every event.
func EventsHandler(ob *observable.Observable) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var names []string
		for _, v := range r.URL.Query()["event"] {
			names = append(names, strings.Split(v, ",")...)
		}
		subscribe := observer.NewSubscribe(names...)

		log.Debug("events subscribed", "events", subscribe, "remote", r.RemoteAddr)

		es := NewEventStream(w, r, RenderJSONFunc, DefaultContentType)
		run := es.Start(ob, subscribe.Names()...)
		es.Render(subscribe)
		run()
	}
}

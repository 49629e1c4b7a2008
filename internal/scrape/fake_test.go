package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/loviiin/argus-comments/internal/platform"
)

var (
	fakeGuest = &platform.Platform{
		Name:         "fake",
		Origin:       "https://fake.test",
		AppID:        "1",
		Hosts:        []string{"fake.test"},
		ShortHosts:   []string{"s.fake.test"},
		CommentsPath: "/comments",
		RepliesPath:  "/replies",
		VideoPrefix:  "https://fake.test/video/",
		AuthMessage:  "faça login",
	}
	fakeAuth = &platform.Platform{
		Name:               "fakeauth",
		Origin:             "https://auth.fake.test",
		AppID:              "2",
		Hosts:              []string{"auth.fake.test"},
		CommentsPath:       "/comments",
		RepliesPath:        "/replies",
		VideoPrefix:        "https://auth.fake.test/video/",
		RequiresLogin:      true,
		LoginWallSelectors: []string{".login-mask"},
		AuthMessage:        "sessão necessária: rode login",
	}
)

func init() {
	platform.Register(fakeGuest)
	platform.Register(fakeAuth)
}

var discard = log.New(io.Discard, "", 0)

func noSleep(context.Context, time.Duration) error { return nil }

func item(cid string, replies int) platform.Item {
	it := platform.Item{CID: cid, Text: "texto " + cid, CreateTime: 1700000000, ReplyCommentTotal: replies, ReplyID: "0"}
	it.User.UniqueID = "user_" + cid
	it.User.Nickname = "Nick " + cid
	return it
}

func inline(cid, parent string) platform.Item {
	it := item(cid, 0)
	it.ReplyID = parent
	return it
}

func page(cursor int64, more bool, items ...platform.Item) platform.ListResponse {
	hm := 0
	if more {
		hm = 1
	}
	return platform.ListResponse{Comments: items, Cursor: cursor, HasMore: hm}
}

type fetchCall struct {
	path      string
	cursor    int64
	commentID string
}

// fakeSession responde aos endpoints de lista a partir de mapas indexados pelo cursor do pedido.
type fakeSession struct {
	mu sync.Mutex

	comments map[int64]platform.ListResponse
	replies  map[string]map[int64]platform.ListResponse
	// handler, quando definido, substitui os mapas.
	handler func(call fetchCall) ([]byte, error)

	html      string
	finalURL  string
	navigated []string
	calls     []fetchCall
	closed    bool
}

func (s *fakeSession) Fetch(_ context.Context, raw string) ([]byte, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	cursor, _ := strconv.ParseInt(u.Query().Get("cursor"), 10, 64)
	call := fetchCall{path: u.Path, cursor: cursor, commentID: u.Query().Get("comment_id")}

	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	if s.handler != nil {
		return s.handler(call)
	}

	var resp platform.ListResponse
	switch u.Path {
	case "/comments":
		resp = s.comments[cursor]
	case "/replies":
		resp = s.replies[call.commentID][cursor]
	default:
		return nil, errors.New("rota desconhecida " + u.Path)
	}
	return json.Marshal(resp)
}

func (s *fakeSession) Navigate(_ context.Context, u string) error {
	s.navigated = append(s.navigated, u)
	if s.finalURL == "" {
		s.finalURL = u
	}
	return nil
}

func (s *fakeSession) HTML(context.Context) (string, error) { return s.html, nil }
func (s *fakeSession) URL() string                          { return s.finalURL }

func (s *fakeSession) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSession) callsTo(path string) int {
	n := 0
	for _, c := range s.calls {
		if c.path == path {
			n++
		}
	}
	return n
}

type fakeOpener struct {
	sess    *fakeSession
	applied bool
	err     error
	opened  []string
}

func (o *fakeOpener) Open(_ context.Context, p *platform.Platform) (Session, bool, error) {
	o.opened = append(o.opened, p.Name)
	if o.err != nil {
		return nil, false, o.err
	}
	return o.sess, o.applied, nil
}

func newTestScraper(o *fakeOpener, defaultPlatform string) *Scraper {
	s := New(o, Options{DefaultPlatform: defaultPlatform}, discard)
	s.sleep = noSleep
	return s
}

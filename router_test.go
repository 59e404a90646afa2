// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"bytes"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var githubAPI = []string{
	"/authorizations",
	"/authorizations/:id",
	"/applications/:client_id/tokens/:access_token",
	"/events",
	"/repos/:owner/:repo/events",
	"/networks/:owner/:repo/events",
	"/orgs/:org/events",
	"/users/:user/received_events",
	"/users/:user/received_events/public",
	"/users/:user/events",
	"/users/:user/events/public",
	"/users/:user/events/orgs/:org",
	"/feeds",
	"/notifications",
	"/repos/:owner/:repo/notifications",
	"/notifications/threads/:id",
	"/notifications/threads/:id/subscription",
	"/repos/:owner/:repo/stargazers",
	"/users/:user/starred",
	"/user/starred",
	"/user/starred/:owner/:repo",
	"/repos/:owner/:repo/subscribers",
	"/users/:user/subscriptions",
	"/user/subscriptions",
	"/user/subscriptions/:owner/:repo",
	"/users/:user/gists",
	"/gists",
	"/gists/:id",
	"/gists/:id/star",
	"/repos/:owner/:repo/git/blobs/:sha",
	"/repos/:owner/:repo/git/commits/:sha",
	"/repos/:owner/:repo/git/refs",
	"/repos/:owner/:repo/git/tags/:sha",
	"/repos/:owner/:repo/git/trees/:sha",
	"/issues",
	"/user/issues",
	"/orgs/:org/issues",
	"/repos/:owner/:repo/issues",
	"/repos/:owner/:repo/issues/:number",
	"/repos/:owner/:repo/assignees",
	"/repos/:owner/:repo/assignees/:assignee",
	"/repos/:owner/:repo/issues/:number/comments",
	"/repos/:owner/:repo/issues/:number/events",
	"/repos/:owner/:repo/labels",
	"/repos/:owner/:repo/labels/:name",
	"/repos/:owner/:repo/issues/:number/labels",
	"/repos/:owner/:repo/milestones/:number/labels",
	"/repos/:owner/:repo/milestones",
	"/repos/:owner/:repo/milestones/:number",
	"/emojis",
	"/gitignore/templates",
	"/gitignore/templates/:name",
	"/meta",
	"/rate_limit",
	"/users/:user/orgs",
	"/user/orgs",
	"/orgs/:org",
	"/orgs/:org/members",
	"/orgs/:org/members/:user",
	"/orgs/:org/teams",
	"/teams/:id",
	"/teams/:id/members",
	"/teams/:id/members/:user",
	"/teams/:id/repos",
	"/teams/:id/repos/:owner/:repo",
	"/user/teams",
	"/repos/:owner/:repo/pulls",
	"/repos/:owner/:repo/pulls/:number",
	"/repos/:owner/:repo/pulls/:number/commits",
	"/repos/:owner/:repo/pulls/:number/files",
	"/repos/:owner/:repo/pulls/:number/merge",
	"/repos/:owner/:repo/pulls/:number/comments",
	"/user/repos",
	"/users/:user/repos",
	"/orgs/:org/repos",
	"/repositories",
	"/repos/:owner/:repo",
	"/repos/:owner/:repo/contributors",
	"/repos/:owner/:repo/languages",
	"/repos/:owner/:repo/teams",
	"/repos/:owner/:repo/tags",
	"/repos/:owner/:repo/branches",
	"/repos/:owner/:repo/branches/:branch",
	"/repos/:owner/:repo/collaborators",
	"/repos/:owner/:repo/collaborators/:user",
	"/repos/:owner/:repo/comments",
	"/repos/:owner/:repo/commits/:sha/comments",
	"/repos/:owner/:repo/commits",
	"/repos/:owner/:repo/commits/:sha",
	"/repos/:owner/:repo/readme",
	"/repos/:owner/:repo/contents/*path",
	"/repos/:owner/:repo/keys",
	"/repos/:owner/:repo/keys/:id",
	"/repos/:owner/:repo/downloads",
	"/repos/:owner/:repo/downloads/:id",
	"/repos/:owner/:repo/forks",
	"/repos/:owner/:repo/hooks",
	"/repos/:owner/:repo/hooks/:id",
	"/repos/:owner/:repo/releases",
	"/repos/:owner/:repo/releases/:id",
	"/repos/:owner/:repo/releases/:id/assets",
	"/repos/:owner/:repo/stats/contributors",
	"/repos/:owner/:repo/stats/commit_activity",
	"/repos/:owner/:repo/stats/code_frequency",
	"/repos/:owner/:repo/stats/participation",
	"/repos/:owner/:repo/stats/punch_card",
	"/repos/:owner/:repo/statuses/:ref",
	"/search/repositories",
	"/search/code",
	"/search/issues",
	"/search/users",
	"/legacy/issues/search/:owner/:repository/:state/:keyword",
	"/legacy/repos/search/:keyword",
	"/legacy/user/search/:keyword",
	"/legacy/user/email/:email",
	"/users/:user",
	"/user",
	"/users",
	"/user/emails",
	"/users/:user/followers",
	"/user/followers",
	"/users/:user/following",
	"/user/following",
	"/user/following/:user",
	"/users/:user/following/:target_user",
	"/users/:user/keys",
	"/user/keys",
	"/user/keys/:id",
}

func TestRouterRegisterAndLookup(t *testing.T) {
	r := MustNew[string]()
	for _, route := range githubAPI {
		require.NoError(t, r.Register(route, route))
	}
	assert.Equal(t, len(githubAPI), r.Len())

	for _, route := range githubAPI {
		m := r.Lookup(route)
		require.Truef(t, m.Found(), "route %s", route)
		assert.Equal(t, route, m.Handler)
		assert.Equal(t, route, m.Route)
	}

	m := r.Lookup("/repos/john/fox/contents/docs/readme.md")
	require.True(t, m.Found())
	assert.Equal(t, "/repos/:owner/:repo/contents/*path", m.Route)
	assert.Equal(t, Params{{"owner", "john"}, {"repo", "fox"}, {"path", "/docs/readme.md"}}, m.Params)

	tree := r.state.Load().tree
	checkPriorities(t, tree.root)
	checkMaxParams(t, tree.root)
	checkStructure(t, tree)
}

func TestRouterRegisterNormalization(t *testing.T) {
	r := MustNew[string]()
	require.NoError(t, r.Register("cmd/:tool/", "tool"))
	require.NoError(t, r.Register("src", "src"))

	routes := make([]string, 0)
	for route := range r.Routes() {
		routes = append(routes, route)
	}
	assert.ElementsMatch(t, []string{"/cmd/:tool/", "/src"}, routes)

	cases := []struct {
		name   string
		path   string
		route  string
		params Params
	}{
		{name: "exact", path: "/cmd/go/", route: "/cmd/:tool/", params: Params{{"tool", "go"}}},
		{name: "exact without trailing slash", path: "/src", route: "/src"},
		{name: "missing leading slash", path: "src", route: "/src"},
		{name: "trailing slash", path: "/src/", route: "/src"},
		{name: "many trailing slashes", path: "/src///", route: "/src"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := r.Lookup(tc.path)
			require.True(t, m.Found())
			assert.Equal(t, tc.route, m.Route)
			assert.Equal(t, tc.params, m.Params)
		})
	}
}

func TestRouterTrailingSlashRoutes(t *testing.T) {
	r := MustNew[string]()
	require.NoError(t, r.Register("/foo", "foo"))
	require.NoError(t, r.Register("/foo/", "foo/"))
	require.NoError(t, r.Register("/bar/", "bar/"))
	require.NoError(t, r.Register("/cmd/:tool/", "tool/"))
	assert.Equal(t, 4, r.Len())

	cases := []struct {
		name    string
		path    string
		kind    MatchKind
		route   string
		handler string
		params  Params
	}{
		{name: "without trailing slash", path: "/foo", kind: Resolved, route: "/foo", handler: "foo"},
		{name: "with trailing slash", path: "/foo/", kind: Resolved, route: "/foo/", handler: "foo/"},
		{name: "registered with trailing slash", path: "/bar/", kind: Resolved, route: "/bar/", handler: "bar/"},
		{name: "tsr to trailing slash", path: "/bar", kind: Redirect},
		{name: "param with trailing slash", path: "/cmd/test/", kind: Resolved, route: "/cmd/:tool/", handler: "tool/", params: Params{{"tool", "test"}}},
		{name: "tsr to param with trailing slash", path: "/cmd/test", kind: Redirect},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := r.Lookup(tc.path)
			assert.Equal(t, tc.kind, m.Kind)
			assert.Equal(t, tc.route, m.Route)
			assert.Equal(t, tc.handler, m.Handler)
			assert.Equal(t, tc.params, m.Params)
			assert.Equal(t, tc.kind == Redirect, m.TSR())
		})
	}

	err := r.Register("/foo/", "dup")
	assert.ErrorIs(t, err, ErrRouteExist)
}

func TestRouterRegisterError(t *testing.T) {
	r := MustNew[string]()
	require.NoError(t, r.Register("/user_:name", "name"))

	err := r.Register("", "empty")
	assert.ErrorIs(t, err, ErrInvalidPath)

	err = r.Register("/user_:id", "id")
	assert.ErrorIs(t, err, ErrRouteConflict)

	err = r.Register("/user_:name", "dup")
	assert.ErrorIs(t, err, ErrRouteExist)

	err = r.Register("user_:name", "dup")
	assert.ErrorIs(t, err, ErrRouteExist)

	err = r.Register("/foo/:", "unnamed")
	assert.ErrorIs(t, err, ErrInvalidPath)

	assert.Equal(t, 1, r.Len())
	assert.Panics(t, func() {
		r.MustRegister("/user_:id", "id")
	})
}

func TestRouterDefaultHandler(t *testing.T) {
	r := MustNew[string]()

	m := r.Lookup("/unknown")
	assert.Equal(t, NoMatch, m.Kind)
	assert.False(t, m.HasHandler())
	assert.Empty(t, m.Handler)

	require.NoError(t, r.Register("/", "default"))
	h, ok := r.Default()
	assert.True(t, ok)
	assert.Equal(t, "default", h)
	assert.Equal(t, 0, r.Len())

	m = r.Lookup("/unknown")
	assert.Equal(t, Fallback, m.Kind)
	assert.True(t, m.HasHandler())
	assert.False(t, m.Found())
	assert.Equal(t, "default", m.Handler)
	assert.Empty(t, m.Route)
	assert.Empty(t, m.Params)

	m = r.Lookup("/")
	assert.Equal(t, Fallback, m.Kind)
	assert.Equal(t, "default", m.Handler)

	require.NoError(t, r.Register("///", "other"))
	m = r.Lookup("/unknown")
	assert.Equal(t, "other", m.Handler)

	r.SetDefault("set")
	m = r.Lookup("/unknown")
	assert.Equal(t, "set", m.Handler)
}

func TestRouterWithDefaultHandler(t *testing.T) {
	r := MustNew(WithDefaultHandler("default"))
	require.NoError(t, r.Register("/users/:id", "user"))

	m := r.Lookup("/users")
	assert.Equal(t, Fallback, m.Kind)
	assert.Equal(t, "default", m.Handler)

	m = r.Lookup("/users/1")
	assert.Equal(t, Resolved, m.Kind)
	assert.Equal(t, "user", m.Handler)
}

func TestRouterRedirect(t *testing.T) {
	r := MustNew(WithDefaultHandler("default"))
	require.NoError(t, r.Register("/src/*filepath", "src"))
	require.NoError(t, r.Register("/cmd/:tool", "cmd"))

	m := r.Lookup("/src")
	assert.Equal(t, Redirect, m.Kind)
	assert.True(t, m.TSR())
	assert.True(t, m.HasHandler())
	assert.Equal(t, "default", m.Handler)

	m = r.Lookup("/src/")
	assert.Equal(t, Resolved, m.Kind)
	assert.Equal(t, Params{{"filepath", "/"}}, m.Params)

	// the root path is never a redirect
	m = r.Lookup("/")
	assert.Equal(t, Fallback, m.Kind)
}

func TestRouterOptions(t *testing.T) {
	_, err := New[string](WithLogger[string](nil))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New[string](WithLogHandler[string](nil))
	assert.ErrorIs(t, err, ErrInvalidConfig)

	assert.Panics(t, func() {
		MustNew[string](WithLogger[string](nil))
	})

	r, err := New[string](WithPrettyLogger[string]())
	require.NoError(t, err)
	assert.NotNil(t, r.logger)
}

func TestRouterLogger(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	r := MustNew(WithLogger[string](logger))

	require.NoError(t, r.Register("/users/:id", "user"))
	assert.Contains(t, buf.String(), "route registered")

	buf.Reset()
	r.Lookup("/users/1")
	assert.Contains(t, buf.String(), "route resolved")
	assert.Contains(t, buf.String(), "route=/users/:id")

	buf.Reset()
	r.Lookup("/users/1/")
	assert.Contains(t, buf.String(), "route resolved after normalization")

	buf.Reset()
	r.Lookup("/nope")
	assert.Contains(t, buf.String(), "no route matched")
	assert.Contains(t, buf.String(), "outcome=no_match")

	buf.Reset()
	require.Error(t, r.Register("/users/:name", "conflict"))
	assert.Contains(t, buf.String(), "route registration failed")
}

func TestRouterString(t *testing.T) {
	r := MustNew[string]()
	require.NoError(t, r.Register("/a", "a"))
	require.NoError(t, r.Register("/b/:id", "b"))

	want := " 02:01 /[2] <> false root\n" +
		" 01:00 . a[0] (/a) false static\n" +
		" 01:01 . b/[1] <> true static\n" +
		" 01:01 . . :id[0] (/b/:id) false param\n"
	assert.Equal(t, want, r.String())
}

func TestDataRace(t *testing.T) {
	var wg sync.WaitGroup
	start, wait := atomicSync()

	r := MustNew[string]()

	wg.Add(len(githubAPI) * 2)
	for _, rte := range githubAPI {
		go func(route string) {
			wait()
			defer wg.Done()
			assert.NoError(t, r.Register(route, route))
		}(rte)

		go func(route string) {
			wait()
			defer wg.Done()
			for i := 0; i < 10; i++ {
				m := r.Lookup(route)
				if m.Found() {
					assert.Equal(t, route, m.Handler)
				}
			}
		}(rte)
	}

	time.Sleep(100 * time.Millisecond)
	start()
	wg.Wait()

	assert.Equal(t, len(githubAPI), r.Len())
	tree := r.state.Load().tree
	checkPriorities(t, tree.root)
	checkMaxParams(t, tree.root)
	checkStructure(t, tree)
}

func TestConcurrentLookup(t *testing.T) {
	r := MustNew(WithDefaultHandler("default"))
	require.NoError(t, r.Register("/repos/:owner/:repo/keys", "keys"))
	require.NoError(t, r.Register("/repos/:owner/:repo/contents/*path", "contents"))
	require.NoError(t, r.Register("/users/:user/received_events/public", "public"))

	var wg sync.WaitGroup
	wg.Add(300)
	start, wait := atomicSync()
	for i := 0; i < 100; i++ {
		go func() {
			defer wg.Done()
			wait()
			m := r.Lookup("/repos/john/fox/keys")
			assert.Equal(t, "keys", m.Handler)
			assert.Equal(t, "john", m.Params.Get("owner"))
			assert.Equal(t, "fox", m.Params.Get("repo"))
		}()

		go func() {
			defer wg.Done()
			wait()
			m := r.Lookup("/repos/alex/vault/contents/file.txt")
			assert.Equal(t, "contents", m.Handler)
			assert.Equal(t, "/file.txt", m.Params.Get("path"))
		}()

		go func(i int) {
			defer wg.Done()
			wait()
			m := r.Lookup(fmt.Sprintf("/users/%d/received_events/private", i))
			assert.Equal(t, Fallback, m.Kind)
			assert.Equal(t, "default", m.Handler)
		}(i)
	}

	start()
	wg.Wait()
}

func atomicSync() (start func(), wait func()) {
	var n int32

	start = func() {
		atomic.StoreInt32(&n, 1)
	}

	wait = func() {
		for atomic.LoadInt32(&n) != 1 {
			time.Sleep(1 * time.Microsecond)
		}
	}

	return
}

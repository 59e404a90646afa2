// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fox/blob/master/LICENSE.txt.

package radixpath

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

var staticRoutes = []string{
	"/cmd.html",
	"/code.html",
	"/contrib.html",
	"/contribute.html",
	"/debugging_with_gdb.html",
	"/docs.html",
	"/effective_go.html",
	"/files.log",
	"/gccgo_contribute.html",
	"/gccgo_install.html",
	"/go-logo-black.png",
	"/go-logo-blue.png",
	"/go-logo-white.png",
	"/go1.1.html",
	"/go1.2.html",
	"/go1.html",
	"/go1compat.html",
	"/go_faq.html",
	"/go_mem.html",
	"/go_spec.html",
	"/help.html",
	"/ie.css",
	"/install-source.html",
	"/install.html",
	"/logo-153x55.png",
	"/Makefile",
	"/root.html",
	"/share.png",
	"/sieve.gif",
	"/tos.html",
	"/articles",
	"/articles/go_command.html",
	"/articles/index.html",
	"/articles/wiki",
	"/articles/wiki/edit.html",
	"/articles/wiki/final-noclosure.go",
	"/articles/wiki/final-noerror.go",
	"/articles/wiki/final-parsetemplate.go",
	"/articles/wiki/final-template.go",
	"/articles/wiki/final.go",
	"/articles/wiki/get.go",
	"/articles/wiki/http-sample.go",
	"/articles/wiki/index.html",
	"/articles/wiki/Makefile",
	"/articles/wiki/notemplate.go",
	"/articles/wiki/part1-noerror.go",
	"/articles/wiki/part1.go",
	"/articles/wiki/part2.go",
	"/iptv-sfr",
	"/articles/wiki/part3.go",
	"/articles/wiki/test.bash",
	"/articles/wiki/test_edit.good",
	"/articles/wiki/test_Test.txt.good",
	"/articles/wiki/test_view.good",
	"/articles/wiki/view.html",
	"/codewalk",
	"/codewalk/codewalk.css",
	"/codewalk/codewalk.js",
	"/codewalk/codewalk.xml",
	"/codewalk/functions.xml",
	"/codewalk/markov.go",
	"/codewalk/markov.xml",
	"/codewalk/pig.go",
	"/codewalk/popout.png",
	"/codewalk/run",
	"/codewalk/sharemem.xml",
	"/codewalk/urlpoll.go",
	"/devel",
	"/devel/release.html",
	"/devel/weekly.html",
	"/gopher",
	"/gopher/appenginegopher.jpg",
	"/gopher/appenginegophercolor.jpg",
	"/gopher/appenginelogo.gif",
	"/gopher/bumper.png",
	"/gopher/bumper192x108.png",
	"/gopher/bumper320x180.png",
	"/gopher/bumper480x270.png",
	"/gopher/bumper640x360.png",
	"/gopher/doc.png",
	"/gopher/frontpage.png",
	"/gopher/gopherbw.png",
	"/gopher/gophercolor.png",
	"/gopher/gophercolor16x16.png",
	"/gopher/help.png",
	"/gopher/pkg.png",
	"/gopher/project.png",
	"/gopher/ref.png",
	"/gopher/run.png",
	"/gopher/talks.png",
	"/gopher/pencil",
	"/gopher/pencil/gopherhat.jpg",
	"/gopher/pencil/gopherhelmet.jpg",
	"/gopher/pencil/gophermega.jpg",
	"/gopher/pencil/gopherrunning.jpg",
	"/gopher/pencil/gopherswim.jpg",
	"/gopher/pencil/gopherswrench.jpg",
	"/play",
	"/play/fib.go",
	"/play/hello.go",
	"/play/life.go",
	"/play/peano.go",
	"/play/pi.go",
	"/play/sieve.go",
	"/play/solitaire.go",
	"/play/tree.go",
	"/progs",
	"/progs/cgo1.go",
	"/progs/cgo2.go",
	"/progs/cgo3.go",
	"/progs/cgo4.go",
	"/progs/defer.go",
	"/progs/defer.out",
	"/progs/defer2.go",
	"/progs/defer2.out",
	"/progs/eff_bytesize.go",
	"/progs/eff_bytesize.out",
	"/progs/eff_qr.go",
	"/progs/eff_sequence.go",
	"/progs/eff_sequence.out",
	"/progs/eff_unused1.go",
	"/progs/eff_unused2.go",
	"/progs/error.go",
	"/progs/error2.go",
	"/progs/error3.go",
	"/progs/error4.go",
	"/progs/go1.go",
	"/progs/gobs1.go",
	"/progs/gobs2.go",
	"/progs/image_draw.go",
	"/progs/image_package1.go",
	"/progs/image_package1.out",
	"/progs/image_package2.go",
	"/progs/image_package2.out",
	"/progs/image_package3.go",
	"/progs/image_package3.out",
	"/progs/image_package4.go",
	"/progs/image_package4.out",
	"/progs/image_package5.go",
	"/progs/image_package5.out",
	"/progs/image_package6.go",
	"/progs/image_package6.out",
	"/progs/interface.go",
	"/progs/interface2.go",
	"/progs/interface2.out",
	"/progs/json1.go",
	"/progs/json2.go",
	"/progs/json2.out",
	"/progs/json3.go",
	"/progs/json4.go",
	"/progs/json5.go",
	"/progs/run",
	"/progs/slices.go",
	"/progs/timeout1.go",
	"/progs/timeout2.go",
	"/progs/update.bash",
}

type mockResponseWriter struct{}

func (m *mockResponseWriter) Header() (h http.Header) {
	return http.Header{}
}

func (m *mockResponseWriter) Write(p []byte) (n int, err error) {
	return len(p), nil
}

func (m *mockResponseWriter) WriteString(s string) (n int, err error) {
	return len(s), nil
}

func (m *mockResponseWriter) WriteHeader(int) {}

func benchLookup(b *testing.B, r *Router[string], paths []string) {
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for _, path := range paths {
			r.Lookup(path)
		}
	}
}

func benchGin(b *testing.B, router http.Handler, paths []string) {
	w := new(mockResponseWriter)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	u := r.URL

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		for _, path := range paths {
			r.RequestURI = path
			u.Path = path
			router.ServeHTTP(w, r)
		}
	}
}

func BenchmarkStaticAll(b *testing.B) {
	r := MustNew[string]()
	for _, route := range staticRoutes {
		require.NoError(b, r.Register(route, route))
	}

	benchLookup(b, r, staticRoutes)
}

func BenchmarkStaticAllGin(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	for _, route := range staticRoutes {
		r.GET(route, func(context *gin.Context) {})
	}

	benchGin(b, r, staticRoutes)
}

func BenchmarkGithubParamsAll(b *testing.B) {
	r := MustNew[string]()
	for _, route := range githubAPI {
		require.NoError(b, r.Register(route, route))
	}

	benchLookup(b, r, []string{"/repos/sylvain/fox/hooks/1500"})
}

func BenchmarkGithubParamsAllGin(b *testing.B) {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	for _, route := range githubAPI {
		r.GET(route, func(context *gin.Context) {})
	}

	benchGin(b, r, []string{"/repos/sylvain/fox/hooks/1500"})
}

func BenchmarkCatchAll(b *testing.B) {
	r := MustNew[string]()
	require.NoError(b, r.Register("/something/*args", "args"))

	benchLookup(b, r, []string{"/something/awesome"})
}

func BenchmarkNormalizedLookup(b *testing.B) {
	r := MustNew[string]()
	for _, route := range githubAPI {
		require.NoError(b, r.Register(route, route))
	}

	benchLookup(b, r, []string{"/repos/sylvain/fox/hooks/1500///", "user/keys"})
}

func BenchmarkFallback(b *testing.B) {
	r := MustNew(WithDefaultHandler("default"))
	for _, route := range githubAPI {
		require.NoError(b, r.Register(route, route))
	}

	benchLookup(b, r, []string{"/does/not/exist"})
}

func BenchmarkStaticParallel(b *testing.B) {
	r := MustNew[string]()
	for _, route := range staticRoutes {
		require.NoError(b, r.Register(route, route))
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			r.Lookup("/go1.html")
		}
	})
}

func BenchmarkRegister(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := MustNew[string]()
		for _, route := range githubAPI {
			_ = r.Register(route, route)
		}
	}
}

func BenchmarkUpdates(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		r := MustNew[string]()
		_ = r.Updates(func(txn *Txn[string]) error {
			for _, route := range githubAPI {
				if err := txn.Register(route, route); err != nil {
					return err
				}
			}
			return nil
		})
	}
}

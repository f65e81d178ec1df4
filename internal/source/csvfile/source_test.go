package csvfile

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

var fixtures = map[string]string{
	"final_list.csv":     "id,slug,speakers,title,url\nt1,a,Ada,Talk A,https://ted.com/t1\nt2,b,Bob,Talk B,https://ted.com/t2\n",
	"details.csv":        "id,interalId,description,duration,publishedAt\nt1,i1,d1,600,2024-01-01\n",
	"tags.csv":           "id,tag\nt1,AI\nt1,Design\n",
	"images.csv":         "id,url\nt1,https://img/t1.jpg\n",
	"related_videos.csv": "id,related_id\nt2,i1\n",
}

var defaultFiles = Files{
	Talks:   "final_list.csv",
	Details: "details.csv",
	Tags:    "tags.csv",
	Images:  "images.csv",
	Related: "related_videos.csv",
}

type SourceTestSuite struct {
	suite.Suite
	ctx    context.Context
	logger *slog.Logger
}

func (s *SourceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestSourceTestSuite(t *testing.T) {
	suite.Run(t, new(SourceTestSuite))
}

func (s *SourceTestSuite) writeFixtures(dir string) {
	for name, body := range fixtures {
		s.Require().NoError(os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
	}
}

func (s *SourceTestSuite) newSource(base string, attempts int) *Source {
	return New(Config{
		BasePath:       base,
		Files:          defaultFiles,
		Timeout:        5 * time.Second,
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}, s.logger)
}

func (s *SourceTestSuite) TestLoad_LocalDirectory() {
	dir := s.T().TempDir()
	s.writeFixtures(dir)

	ds, err := s.newSource(dir, 1).Load(s.ctx)

	s.Require().NoError(err)
	s.Len(ds.Talks, 2)
	s.Equal("Ada", *ds.Talks[0].Speaker)
	s.Len(ds.Details, 1)
	s.Equal("i1", *ds.Details[0].InternalID)
	s.Len(ds.Tags, 2)
	s.Len(ds.Images, 1)
	s.Equal("https://img/t1.jpg", *ds.Images[0].ImageURL)
	s.Len(ds.Related, 1)
}

func (s *SourceTestSuite) TestLoad_MissingFile() {
	dir := s.T().TempDir()
	s.writeFixtures(dir)
	s.Require().NoError(os.Remove(filepath.Join(dir, "images.csv")))

	ds, err := s.newSource(dir, 1).Load(s.ctx)

	s.Error(err)
	s.Nil(ds)
	s.Contains(err.Error(), "images.csv")
}

func (s *SourceTestSuite) TestLoad_HTTPWithRetry() {
	var failures atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/data/tags.csv" && failures.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		body, ok := fixtures[filepath.Base(r.URL.Path)]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte(body))
	}))
	defer server.Close()

	ds, err := s.newSource(server.URL+"/data/", 3).Load(s.ctx)

	s.Require().NoError(err)
	s.Len(ds.Tags, 2)
	s.Len(ds.Talks, 2)
	s.GreaterOrEqual(failures.Load(), int32(2))
}

func (s *SourceTestSuite) TestLoad_HTTPGivesUp() {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := s.newSource(server.URL, 2).Load(s.ctx)

	s.Require().Error(err)
	s.Contains(err.Error(), "after 2 attempts")
}

func (s *SourceTestSuite) TestCalculateBackoff() {
	src := New(Config{InitialBackoff: time.Second, MaxBackoff: 5 * time.Second}, s.logger)

	s.Equal(time.Second, src.calculateBackoff(1))
	s.Equal(2*time.Second, src.calculateBackoff(2))
	s.Equal(4*time.Second, src.calculateBackoff(3))
	s.Equal(5*time.Second, src.calculateBackoff(4))
}

package api

import (
	"net/http"
	"sync"
	"time"

	"pdf_toolkit/download"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// operation is the state of one user-initiated pipeline run. It owns the
// download references created during the run and the client's
// processing-in-progress flag.
type operation struct {
	id      string
	name    string
	started time.Time
	log     *logrus.Entry
	lease   *download.Lease
	release func()
}

// outputFile describes a published download reference.
type outputFile struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	URL       string `json:"url"`
	Size      int64  `json:"size"`
	SizeHuman string `json:"size_human"`
}

// publish wraps data as a downloadable resource owned by the operation.
func (op *operation) publish(data []byte, filename, contentType string) outputFile {
	return op.publishResource(download.NewResource(data, filename, contentType))
}

// publishResource stores res under the operation's lease.
func (op *operation) publishResource(res *download.Resource) outputFile {
	id := op.lease.Put(res)
	return outputFile{
		ID:        id,
		Filename:  res.Filename,
		URL:       DownloadPath + id,
		Size:      res.Size(),
		SizeHuman: download.FormatSize(res.Size()),
	}
}

// finish ends the operation. Resources are kept only when it succeeded.
func (op *operation) finish(succeeded bool) {
	op.lease.Close(succeeded)
	op.release()
	op.log.WithFields(logrus.Fields{
		"succeeded":   succeeded,
		"duration_ms": time.Since(op.started).Milliseconds(),
	}).Info("operation finished")
}

// opFunc runs the body of an operation and returns the JSON response.
type opFunc func(c *gin.Context, op *operation) (gin.H, error)

// run executes fn as one operation: acquire the client's busy flag and a
// lease, run, then release both on every path.
func (s *Service) run(c *gin.Context, name string, fn opFunc) {
	client := clientKey(c)
	release, ok := s.busy.acquire(client)
	if !ok {
		s.logger.WithFields(logrus.Fields{"op": name, "client": client}).Warn("operation rejected, client busy")
		c.JSON(http.StatusConflict, gin.H{"error": msgBusy})
		return
	}

	op := &operation{
		id:      uuid.NewString(),
		name:    name,
		started: time.Now(),
		log:     s.logger.WithFields(logrus.Fields{"op": name, "client": client}),
		lease:   s.store.Lease(),
		release: release,
	}
	op.log = op.log.WithField("op_id", op.id)

	succeeded := false
	defer func() { op.finish(succeeded) }()

	resp, err := fn(c, op)
	if err != nil {
		status, msg := classifyError(err)
		if status >= 500 {
			op.log.WithError(err).Error("operation failed")
		} else {
			op.log.WithError(err).Info("operation rejected")
		}
		c.JSON(status, gin.H{"error": msg})
		return
	}

	succeeded = true
	resp["operation_id"] = op.id
	c.JSON(http.StatusOK, resp)
}

// clientKey identifies the caller for the busy check.
func clientKey(c *gin.Context) string {
	if id := c.GetHeader(ClientIDHeader); id != "" {
		return id
	}
	return c.ClientIP()
}

// busyGuard allows one operation at a time per client.
type busyGuard struct {
	mu     sync.Mutex
	active map[string]struct{}
}

func newBusyGuard() *busyGuard {
	return &busyGuard{active: make(map[string]struct{})}
}

// acquire marks key busy. The returned release func is idempotent.
func (g *busyGuard) acquire(key string) (func(), bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return nil, false
	}
	g.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.active, key)
			g.mu.Unlock()
		})
	}, true
}

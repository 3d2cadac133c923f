package logging

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// RequestLog is one JSONL line in the audit trail: who called which
// endpoint with what payload. The Authorization header is never recorded.
type RequestLog struct {
	Timestamp  time.Time           `json:"timestamp"`
	UserID     int64               `json:"user_id"`
	Method     string              `json:"method"`
	URL        string              `json:"url"`
	Headers    map[string][]string `json:"headers"`
	RemoteAddr string              `json:"remote_addr"`
	Body       string              `json:"body"`
}

// RequestLogger appends request entries to size-rotated JSONL files. All
// disk work happens on a single background goroutine; LogRequest only
// hands the entry to a channel and drops it when the channel is full, so
// the request path never waits on the filesystem.
type RequestLogger struct {
	fileTemplate  string // e.g. "/var/log/postforge/requests-%s.jsonl"
	maxSize       int64
	maxFiles      int
	flushInterval time.Duration

	mu          sync.Mutex
	currentFile string
	file        *os.File
	writer      *bufio.Writer
	currentSize int64

	entries chan RequestLog
	done    chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

// NewLogger opens the first log file and starts the writer goroutine.
// bufferSize bounds how many entries can wait for the writer before new
// ones are dropped.
func NewLogger(fileTemplate string, maxSize int64, maxFiles, bufferSize int, flushInterval time.Duration) (*RequestLogger, error) {
	logger := &RequestLogger{
		fileTemplate:  fileTemplate,
		maxSize:       maxSize,
		maxFiles:      maxFiles,
		flushInterval: flushInterval,
		entries:       make(chan RequestLog, bufferSize),
		done:          make(chan struct{}),
	}

	if err := logger.openFile(); err != nil {
		return nil, err
	}

	logger.wg.Add(1)
	go logger.run()
	return logger, nil
}

// LogRequest queues one request for the audit trail. Multipart bodies
// (audio and image uploads) are not captured; recording megabytes of raw
// media per request would exhaust the rotation budget immediately.
func (logger *RequestLogger) LogRequest(r *http.Request, userID int64) {
	headers := make(map[string][]string, len(r.Header))
	for name, values := range r.Header {
		if name == "Authorization" {
			continue
		}
		headers[name] = values
	}

	var body string
	if r.Body != nil && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		data, err := io.ReadAll(r.Body)
		if err == nil {
			body = string(data)
		}
		// Hand the body back so the route handler can still read it.
		r.Body = io.NopCloser(bytes.NewBuffer(data))
	}

	entry := RequestLog{
		Timestamp:  time.Now(),
		UserID:     userID,
		Method:     r.Method,
		URL:        r.URL.String(),
		Headers:    headers,
		RemoteAddr: r.RemoteAddr,
		Body:       body,
	}

	select {
	case logger.entries <- entry:
	default:
		// Writer is behind; losing an audit line beats blocking a request.
	}
}

// Shutdown drains queued entries, flushes the buffer and closes the file.
// Safe to call more than once.
func (logger *RequestLogger) Shutdown() {
	logger.mu.Lock()
	if logger.closed {
		logger.mu.Unlock()
		return
	}
	logger.closed = true
	logger.mu.Unlock()

	close(logger.done)
	logger.wg.Wait()
}

// run owns the file handle: it serializes entries, flushes on a timer and
// drains the channel on shutdown.
func (logger *RequestLogger) run() {
	defer logger.wg.Done()

	ticker := time.NewTicker(logger.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case entry := <-logger.entries:
			logger.writeEntry(entry)
		case <-ticker.C:
			logger.mu.Lock()
			_ = logger.writer.Flush()
			logger.mu.Unlock()
		case <-logger.done:
			for {
				select {
				case entry := <-logger.entries:
					logger.writeEntry(entry)
				default:
					logger.mu.Lock()
					_ = logger.writer.Flush()
					_ = logger.file.Close()
					logger.mu.Unlock()
					return
				}
			}
		}
	}
}

func (logger *RequestLogger) writeEntry(entry RequestLog) {
	data, err := json.Marshal(entry)
	if err != nil {
		Errorf("dropping unserializable request log entry: %v", err)
		return
	}
	line := append(data, '\n')

	if err := logger.rotateIfNeeded(len(line)); err != nil {
		Errorf("request log rotation failed: %v", err)
	}

	logger.mu.Lock()
	_, _ = logger.writer.Write(line)
	logger.currentSize += int64(len(line))
	logger.mu.Unlock()
}

// openFile creates the directory if needed and points the buffered writer
// at a freshly stamped file.
func (logger *RequestLogger) openFile() error {
	logger.currentFile = logger.stampedFileName()

	dir := filepath.Dir(logger.currentFile)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create log directory %s: %w", dir, err)
	}

	file, err := os.OpenFile(logger.currentFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	fi, err := file.Stat()
	if err != nil {
		file.Close()
		return err
	}

	logger.currentSize = fi.Size()
	logger.file = file
	logger.writer = bufio.NewWriter(file)
	return nil
}

// stampedFileName applies the current timestamp to the file template.
func (logger *RequestLogger) stampedFileName() string {
	return fmt.Sprintf(logger.fileTemplate, time.Now().Format("20060102150405"))
}

// rotateIfNeeded starts a new file when writing n more bytes would pass
// the size cap, then prunes files beyond the retention count.
func (logger *RequestLogger) rotateIfNeeded(n int) error {
	logger.mu.Lock()
	defer logger.mu.Unlock()

	if logger.currentSize+int64(n) < logger.maxSize {
		return nil
	}

	if err := logger.writer.Flush(); err != nil {
		return err
	}
	if err := logger.file.Close(); err != nil {
		return err
	}
	if err := logger.openFile(); err != nil {
		return err
	}

	return logger.pruneOldFiles()
}

// pruneOldFiles deletes the oldest rotated files once more than maxFiles
// exist.
func (logger *RequestLogger) pruneOldFiles() error {
	pattern := fmt.Sprintf(logger.fileTemplate, "*")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return err
	}

	sort.Slice(matches, func(i, j int) bool {
		fi, err1 := os.Stat(matches[i])
		fj, err2 := os.Stat(matches[j])
		if err1 != nil || err2 != nil {
			return false
		}
		return fi.ModTime().Before(fj.ModTime())
	})

	for i := 0; i < len(matches)-logger.maxFiles; i++ {
		_ = os.Remove(matches[i])
	}
	return nil
}

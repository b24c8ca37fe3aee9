package dummy

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"anoa.com/safereport/pkg/mailer"
	"anoa.com/safereport/pkg/otp"
	"anoa.com/safereport/pkg/queue"
	"anoa.com/safereport/pkg/storage"

	realtime "anoa.com/safereport/internal/modules/realtime/service"
)

// Storage records uploads in memory. Uploads whose body contains
// FailOn are rejected.
type Storage struct {
	sync.Mutex
	FailOn  string
	Uploads []Upload
	Deleted []string
}

type Upload struct {
	Folder      string
	FileName    string
	ContentType string
	Body        []byte
}

var _ storage.FileStorage = (*Storage)(nil)

var ErrUploadRejected = errors.New("upload rejected")

func (s *Storage) Upload(_ context.Context, r io.Reader, folder, fileName, contentType string) (string, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	s.Lock()
	defer s.Unlock()

	if s.FailOn != "" && strings.Contains(string(body), s.FailOn) {
		return "", ErrUploadRejected
	}
	s.Uploads = append(s.Uploads, Upload{Folder: folder, FileName: fileName, ContentType: contentType, Body: body})
	return "https://files.test/" + folder + "/" + fileName, nil
}

func (s *Storage) Delete(_ context.Context, url string) error {
	s.Lock()
	defer s.Unlock()
	s.Deleted = append(s.Deleted, url)
	return nil
}

func (s *Storage) UploadCount() int {
	s.Lock()
	defer s.Unlock()
	return len(s.Uploads)
}

type Published struct {
	Channel string
	Event   realtime.Event
}

// Publisher records realtime events instead of sending them over redis.
type Publisher struct {
	sync.Mutex
	Events []Published
}

var _ realtime.Publisher = (*Publisher)(nil)

func (p *Publisher) Publish(_ context.Context, channel string, event realtime.Event) {
	p.Lock()
	defer p.Unlock()
	p.Events = append(p.Events, Published{Channel: channel, Event: event})
}

func (p *Publisher) Channels() []string {
	p.Lock()
	defer p.Unlock()

	out := make([]string, len(p.Events))
	for i, e := range p.Events {
		out[i] = e.Channel
	}
	return out
}

// Broker records broker events.
type Broker struct {
	sync.Mutex
	Events []queue.Event
}

func (b *Broker) Publish(_ context.Context, e queue.Event) error {
	b.Lock()
	defer b.Unlock()
	b.Events = append(b.Events, e)
	return nil
}

func (b *Broker) Types() []string {
	b.Lock()
	defer b.Unlock()

	out := make([]string, len(b.Events))
	for i, e := range b.Events {
		out[i] = e.Type
	}
	return out
}

// Mailer records sent messages.
type Mailer struct {
	sync.Mutex
	Err  error
	Sent []mailer.Message
}

var _ mailer.Mailer = (*Mailer)(nil)

func (m *Mailer) Send(_ context.Context, msg mailer.Message) error {
	m.Lock()
	defer m.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	return nil
}

// Codes is an in-memory one-time code store with the same single-use and
// attempt rules as the redis store.
type Codes struct {
	sync.Mutex
	codes    map[string]string
	attempts map[string]int
}

func (c *Codes) Issue(_ context.Context, subject string) (string, error) {
	code, err := otp.GenerateCode()
	if err != nil {
		return "", err
	}

	c.Lock()
	defer c.Unlock()
	if c.codes == nil {
		c.codes = map[string]string{}
		c.attempts = map[string]int{}
	}
	key := strings.ToLower(subject)
	c.codes[key] = code
	delete(c.attempts, key)
	return code, nil
}

func (c *Codes) Verify(_ context.Context, subject, code string) (bool, error) {
	c.Lock()
	defer c.Unlock()

	key := strings.ToLower(subject)
	stored, ok := c.codes[key]
	if !ok {
		return false, nil
	}
	c.attempts[key]++
	if c.attempts[key] > otp.MaxAttempts {
		delete(c.codes, key)
		return false, nil
	}
	if stored != code {
		return false, nil
	}
	delete(c.codes, key)
	return true, nil
}

func (c *Codes) TTL() time.Duration { return 15 * time.Minute }

// Code returns the pending code for subject.
func (c *Codes) Code(subject string) string {
	c.Lock()
	defer c.Unlock()
	return c.codes[strings.ToLower(subject)]
}

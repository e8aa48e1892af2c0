package sync

import (
	"context"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/notification-center/internal/model"
	"github.com/nhle/notification-center/internal/notify"
)

// Feed is the part of the notification service the poller reads.
type Feed interface {
	ListNotifications(ctx context.Context, memberID string, opts notify.ListOptions) []model.Notification
	UnreadCount(ctx context.Context, memberID string) int
}

// SyncState represents the current state of the poller.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
)

// SyncStatus holds the poller state.
type SyncStatus struct {
	State    SyncState
	LastSync time.Time
}

// FeedMsg is a tea.Msg sent after each refresh.
type FeedMsg struct {
	Notifications []model.Notification
	Unread        int
	// NewCount is the number of notifications not seen in earlier
	// refreshes. It is zero on the first refresh.
	NewCount  int
	FetchedAt time.Time
}

// fetchTimeout is the maximum time allowed for a single refresh.
const fetchTimeout = 30 * time.Second

// DefaultInterval is used when the configured interval is not positive.
const DefaultInterval = 60 * time.Second

// Poller periodically refreshes one member's feed and unread badge.
type Poller struct {
	feed      Feed
	memberID  string
	pageSize  int
	interval  time.Duration
	log       *zap.Logger
	now       func() time.Time
	status    SyncStatus
	seen      map[string]bool
	resultCh  chan FeedMsg
	triggerCh chan struct{}
	stopCh    chan struct{}
	mu        gosync.Mutex
	running   bool
}

// Options configures a Poller.
type Options struct {
	MemberID string
	PageSize int
	Interval time.Duration
	Logger   *zap.Logger
}

// New creates a Poller over feed.
func New(feed Feed, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.PageSize <= 0 {
		opts.PageSize = notify.DefaultListLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Poller{
		feed:      feed,
		memberID:  opts.MemberID,
		pageSize:  opts.PageSize,
		interval:  opts.Interval,
		log:       opts.Logger,
		now:       time.Now,
		resultCh:  make(chan FeedMsg, 16),
		triggerCh: make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
	}
}

// Start returns a tea.Cmd that starts the polling goroutine and waits for
// its first result.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	p.mu.Unlock()

	go p.loop()

	return p.waitForResult()
}

// Stop halts the polling goroutine.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return
	}

	close(p.stopCh)
	p.running = false
}

// Refresh triggers an immediate refresh. Triggers coalesce while one is
// pending.
func (p *Poller) Refresh() {
	select {
	case p.triggerCh <- struct{}{}:
	default:
	}
}

// Status returns the current poller state.
func (p *Poller) Status() SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

func (p *Poller) loop() {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.fetch()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.fetch()
		case <-p.triggerCh:
			p.fetch()
		}
	}
}

// fetch bypasses the feed cache so each tick sees fresh data.
func (p *Poller) fetch() {
	p.setState(SyncRunning)

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	feed := p.feed.ListNotifications(ctx, p.memberID, notify.ListOptions{
		Limit:        p.pageSize,
		ForceRefresh: true,
	})
	unread := p.feed.UnreadCount(ctx, p.memberID)

	p.mu.Lock()
	newCount := 0
	first := p.seen == nil
	if first {
		p.seen = make(map[string]bool, len(feed))
	}
	for _, n := range feed {
		key := string(n.Source) + ":" + n.ID
		if !p.seen[key] {
			p.seen[key] = true
			if !first {
				newCount++
			}
		}
	}
	now := p.now()
	p.status = SyncStatus{State: SyncIdle, LastSync: now}
	p.mu.Unlock()

	if newCount > 0 {
		p.log.Info("new notifications", zap.String("member_id", p.memberID), zap.Int("count", newCount))
	}

	p.sendResult(FeedMsg{
		Notifications: feed,
		Unread:        unread,
		NewCount:      newCount,
		FetchedAt:     now,
	})
}

func (p *Poller) setState(state SyncState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.State = state
}

// sendResult sends a FeedMsg without blocking.
func (p *Poller) sendResult(msg FeedMsg) {
	select {
	case p.resultCh <- msg:
	default:
		// Drop if channel is full to avoid blocking the poller
	}
}

func (p *Poller) waitForResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-p.resultCh
		if !ok {
			return nil
		}
		return result
	}
}

// WaitForNextResult returns a tea.Cmd that waits for the next refresh.
// Call it after handling a FeedMsg to keep listening.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return p.waitForResult()
}

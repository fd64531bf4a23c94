package otpgate

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
)

type mailJob struct {
	To       string
	Subject  string
	Template string
	Data     map[string]string
}

// mailDispatcher delivers messages on a detached worker so issuance
// latency is never coupled to SMTP latency. Delivery outcome reaches the
// audit sink; it is never awaited by the caller.
type mailDispatcher struct {
	mailer    Mailer
	audit     *auditDispatcher
	metrics   *Metrics
	ch        chan mailJob
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closed    atomic.Bool
	closeOnce sync.Once
}

func newMailDispatcher(cfg MailQueueConfig, mailer Mailer, audit *auditDispatcher, metrics *Metrics) *mailDispatcher {
	if mailer == nil {
		return nil
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1
	}

	d := &mailDispatcher{
		mailer:  mailer,
		audit:   audit,
		metrics: metrics,
		ch:      make(chan mailJob, cfg.QueueSize),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *mailDispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case job := <-d.ch:
			d.deliver(job)
		case <-d.done:
			for {
				select {
				case job := <-d.ch:
					d.deliver(job)
				default:
					return
				}
			}
		}
	}
}

func (d *mailDispatcher) deliver(job mailJob) {
	err := d.mailer.Send(job.To, job.Subject, job.Template, job.Data)
	if err == nil {
		return
	}

	log.Print("otpgate: mail delivery failed")
	d.metrics.inc(MetricMailDeliveryFailure)
	d.audit.Emit(context.Background(), AuditEvent{
		EventType: auditEventMailFailed,
		Identity:  job.To,
		Success:   false,
		Error:     err.Error(),
		Metadata: map[string]string{
			"template": job.Template,
		},
	})
}

// Enqueue queues a message without blocking. A nil dispatcher (no mailer
// configured) and a full queue both drop silently; issuance must not care.
func (d *mailDispatcher) Enqueue(job mailJob) {
	if d == nil || d.closed.Load() {
		return
	}

	select {
	case d.ch <- job:
	case <-d.done:
	default:
		d.dropped.Add(1)
	}
}

// Close stops the worker after draining queued messages. Idempotent.
func (d *mailDispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.closed.Store(true)
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports how many messages were discarded by a full queue.
func (d *mailDispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

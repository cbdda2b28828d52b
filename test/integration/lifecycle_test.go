//go:build integration

package integration

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/provsync/provsync/internal/coordinate"
	"github.com/provsync/provsync/internal/docstore"
)

const terminalStatus = "Shutting down provisioning instance"

var testRef = docstore.Ref{Project: "acme-prod", Database: "deploy-db", Collection: "deploy-1"}

func docPath(id string) string {
	return testRef.Path() + "/" + id
}

var _ = Describe("Metadata coordination", func() {
	It("round-trips a published list through the wire codec", func() {
		coord := coordinate.NewCoordinator(newClient(), testRef)

		Expect(coord.Publish(ctx, coordinate.KeyInstanceIDs, []string{"i-1", "i-2", "i-3"})).To(Succeed())

		values, err := coord.Fetch(ctx, coordinate.KeyInstanceIDs)
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]string{"i-1", "i-2", "i-3"}))
	})

	It("stores the placeholder for an empty list and fetches it as nil", func() {
		coord := coordinate.NewCoordinator(newClient(), testRef)

		Expect(coord.Publish(ctx, coordinate.KeyFloatIPs, nil)).To(Succeed())
		Expect(store.Fields(docPath(coordinate.KeyFloatIPs))).To(
			HaveKeyWithValue(coordinate.KeyFloatIPs, docstore.Placeholder))

		values, err := coord.Fetch(ctx, coordinate.KeyFloatIPs)
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(BeNil())
	})

	It("treats an absent document as a fatal setup error", func() {
		coord := coordinate.NewCoordinator(newClient(), testRef)

		_, err := coord.Fetch(ctx, coordinate.KeyBucketNames)

		var missing *coordinate.MissingPlaceholderError
		Expect(err).To(BeAssignableToTypeOf(missing))
	})

	It("creates every placeholder document exactly once", func() {
		coord := coordinate.NewCoordinator(newClient(), testRef)
		store.Seed(docPath(coordinate.KeyUUID), map[string]string{coordinate.KeyUUID: "abc-123"})

		Expect(coord.InitPlaceholders(ctx)).To(Succeed())

		for _, key := range coordinate.MetadataKeys {
			Expect(store.Fields(docPath(key))).NotTo(BeNil(), "document %q should exist", key)
		}
		Expect(store.Fields(docPath(coordinate.KeyUUID))).To(
			HaveKeyWithValue(coordinate.KeyUUID, "abc-123"), "existing documents are preserved")
	})

	It("preserves earlier progress fields across status writes", func() {
		coord := coordinate.NewCoordinator(newClient(), testRef)
		store.Seed(docPath(coordinate.StatusDocument), map[string]string{"Jan_01_000000": "Old progress"})

		Expect(coord.PublishStatus(ctx, "Forming quorum")).To(Succeed())

		fields := store.Fields(docPath(coordinate.StatusDocument))
		Expect(fields).To(HaveKeyWithValue("Jan_01_000000", "Old progress"))
		Expect(fields).To(HaveLen(2))
	})

	It("rides out transient store outages", func() {
		coord := coordinate.NewCoordinator(newClient(), testRef)
		store.Seed(docPath(coordinate.KeyNodeIPs), map[string]string{coordinate.KeyNodeIPs: "10.0.0.4"})
		store.FailNext(2)

		values, err := coord.Fetch(ctx, coordinate.KeyNodeIPs)
		Expect(err).NotTo(HaveOccurred())
		Expect(values).To(Equal([]string{"10.0.0.4"}))
	})
})

var _ = Describe("Wait flow", func() {
	newPoller := func(extra ...coordinate.PollerOption) *coordinate.Poller {
		opts := append([]coordinate.PollerOption{
			coordinate.WithTerminalStatus(terminalStatus),
			coordinate.WithInterval(5 * time.Millisecond),
			coordinate.WithCeiling(2 * time.Second),
			coordinate.WithWorkerInstance("deploy-worker-1"),
		}, extra...)
		return coordinate.NewPoller(newClient(), testRef, opts...)
	}

	It("observes progress and returns when the terminal status appears", func() {
		coord := coordinate.NewCoordinator(newClient(), testRef)
		observer := &collectingObserver{}

		store.Seed(docPath(coordinate.StatusDocument),
			map[string]string{coordinate.StatusFieldKey(time.Now()): docstore.Placeholder})

		done := make(chan error, 1)
		go func() {
			done <- newPoller(coordinate.WithObserver(observer)).Wait(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		Expect(coord.PublishStatus(ctx, "Forming quorum")).To(Succeed())
		time.Sleep(20 * time.Millisecond)
		Expect(coord.PublishStatus(ctx, terminalStatus)).To(Succeed())

		Eventually(done, time.Second).Should(Receive(BeNil()))
		Expect(observer.Statuses()).To(ContainElement("Forming quorum"))
		Expect(observer.Phases()).To(Equal([]coordinate.Phase{
			coordinate.PhaseAwaitingBoot,
			coordinate.PhasePolling,
			coordinate.PhaseTerminal,
		}))
	})

	It("times out with full coordinates when the provisioner stalls", func() {
		store.Seed(docPath(coordinate.StatusDocument),
			map[string]string{coordinate.StatusFieldKey(time.Now()): "Forming quorum"})

		err := newPoller(coordinate.WithCeiling(30 * time.Millisecond)).Wait(ctx)

		var timeout *coordinate.TimeoutError
		Expect(err).To(BeAssignableToTypeOf(timeout))
		Expect(err.Error()).To(ContainSubstring("deploy-worker-1"))
		Expect(err.Error()).To(ContainSubstring("Forming quorum"))
	})

	It("ignores progress left over from earlier months", func() {
		lastMonth := time.Now().AddDate(0, -1, 0)
		store.Seed(docPath(coordinate.StatusDocument),
			map[string]string{coordinate.StatusFieldKey(lastMonth): terminalStatus})

		// A stale terminal marker must not end the wait: with nothing
		// written this month the poller stays in the boot phase until
		// cancelled from outside.
		waitCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
		defer cancel()

		Expect(newPoller().Wait(waitCtx)).To(MatchError(context.DeadlineExceeded))
	})
})

// collectingObserver records phases and statuses under a lock.
type collectingObserver struct {
	mu       sync.Mutex
	phases   []coordinate.Phase
	statuses []string
}

func (o *collectingObserver) PhaseChanged(phase coordinate.Phase, _ string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.phases = append(o.phases, phase)
}

func (o *collectingObserver) StatusObserved(status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.statuses = append(o.statuses, status)
}

func (o *collectingObserver) Phases() []coordinate.Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]coordinate.Phase(nil), o.phases...)
}

func (o *collectingObserver) Statuses() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.statuses...)
}

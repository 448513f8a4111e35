//go:build e2e

/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package e2e

import (
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/redis/go-redis/v9"
	clocktesting "k8s.io/utils/clock/testing"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/ardikabs/autodark/internal/oracle"
	"github.com/ardikabs/autodark/internal/scheduler"
	"github.com/ardikabs/autodark/internal/settings"
	"github.com/ardikabs/autodark/internal/wellknown"
	"github.com/ardikabs/autodark/test/e2e/testutil"
)

var _ = Describe("autodark daemon on ConfigMap settings", func() {
	const user = "1000"

	var (
		k8sClient client.WithWatch
		clk       *clocktesting.FakeClock
		dayNight  *oracle.Static
		daemon    *testutil.Daemon
		cliStore  *settings.ConfigMapStore
		cli       *settings.Settings
	)

	startAt := func(now time.Time) {
		clk.SetTime(now)
		Expect(daemon.Sessions.StartUser(ctx, user)).To(Succeed())
		testutil.WaitForWatch(ctx, daemon, user, cliStore)
	}

	BeforeEach(func() {
		k8sClient = newK8sClient()
		clk = clocktesting.NewFakeClock(march(10, 12, 0))
		dayNight = oracle.NewStatic(nil)

		log := logf.Log.WithName("e2e")
		daemon = testutil.NewDaemon(clk, dayNight, func(u string) settings.Store {
			return settings.NewConfigMapStore(k8sClient, testNamespace, u, log)
		}, log)

		cliStore = settings.NewConfigMapStore(k8sClient, testNamespace, user, log.WithName("cli"))
		cli = testutil.NewSettings(cliStore, clk)
	})

	AfterEach(func() {
		daemon.Sessions.Shutdown()
	})

	It("follows the default 22:00-06:00 window across a night", func() {
		startAt(march(10, 21, 0))
		testutil.EventuallyApplied(daemon, user, false)

		By("reaching the window start")
		clk.SetTime(march(10, 22, 0))
		testutil.EventuallyApplied(daemon, user, true)
		Expect(cli.IsActivated(ctx)).To(BeTrue())

		By("reaching the window end")
		clk.SetTime(march(11, 6, 0))
		testutil.EventuallyApplied(daemon, user, false)

		wake, ok := daemon.Runner(user).Scheduler.NextWake()
		Expect(ok).To(BeTrue())
		Expect(wake).To(BeTemporally("==", march(11, 22, 0)))
	})

	It("keeps a manual toggle until the next boundary", func() {
		startAt(march(10, 23, 0))
		testutil.EventuallyApplied(daemon, user, true)

		By("switching to light from the command line")
		Expect(cli.SetActivated(ctx, false)).To(Succeed())
		testutil.EventuallyApplied(daemon, user, false)

		By("passing midnight inside the window")
		clk.SetTime(march(11, 0, 30))
		testutil.ConsistentlyApplied(daemon, user, false, 500*time.Millisecond)

		By("reaching the next window start")
		clk.SetTime(march(11, 6, 0))
		testutil.ConsistentlyApplied(daemon, user, false, 300*time.Millisecond)
		clk.SetTime(march(11, 22, 0))
		testutil.EventuallyApplied(daemon, user, true)
	})

	It("re-evaluates the window when its bounds are edited", func() {
		startAt(march(10, 21, 0))
		testutil.EventuallyApplied(daemon, user, false)

		nextWake := func() time.Time {
			wake, _ := daemon.Runner(user).Scheduler.NextWake()
			return wake
		}

		By("moving the start so that now falls inside the window")
		start, err := scheduler.ParseTimeOfDay("20:00")
		Expect(err).NotTo(HaveOccurred())
		Expect(cli.SetStartTime(ctx, start)).To(Succeed())
		testutil.EventuallyApplied(daemon, user, true)
		Eventually(nextWake, testutil.DefaultTimeout, testutil.DefaultInterval).Should(BeTemporally("==", march(11, 6, 0)))

		By("moving the end without leaving the window")
		end, err := scheduler.ParseTimeOfDay("05:00")
		Expect(err).NotTo(HaveOccurred())
		Expect(cli.SetEndTime(ctx, end)).To(Succeed())
		Eventually(nextWake, testutil.DefaultTimeout, testutil.DefaultInterval).Should(BeTemporally("==", march(11, 5, 0)))
		testutil.ConsistentlyApplied(daemon, user, true, 300*time.Millisecond)
		Expect(cli.LastActivatedAt(ctx)).To(BeNil())

		By("reaching the new window end")
		clk.SetTime(march(11, 5, 0))
		testutil.EventuallyApplied(daemon, user, false)
	})

	It("follows the oracle after a mode switch", func() {
		dayNight.Set(&oracle.State{IsNight: true, Sunset: march(10, 18, 0), Sunrise: march(11, 6, 0)})
		startAt(march(10, 23, 0))
		testutil.EventuallyApplied(daemon, user, true)

		By("switching to the oracle from the command line")
		Expect(cli.SetMode(ctx, scheduler.KindOracle)).To(Succeed())
		Eventually(func() scheduler.Kind {
			kind, _ := daemon.Runner(user).Scheduler.ActivePolicy()
			return kind
		}, testutil.DefaultTimeout, testutil.DefaultInterval).Should(Equal(scheduler.KindOracle))

		_, hasWake := daemon.Runner(user).Scheduler.NextWake()
		Expect(hasWake).To(BeFalse())
		testutil.ConsistentlyApplied(daemon, user, true, 300*time.Millisecond)

		By("crossing sunrise")
		clk.SetTime(march(11, 6, 30))
		dayNight.Set(&oracle.State{IsNight: false, Sunrise: march(11, 6, 0), Sunset: march(11, 18, 0)})
		testutil.EventuallyApplied(daemon, user, false)

		By("crossing sunset")
		clk.SetTime(march(11, 18, 5))
		dayNight.Set(&oracle.State{IsNight: true, Sunset: march(11, 18, 0), Sunrise: march(12, 6, 0)})
		testutil.EventuallyApplied(daemon, user, true)
	})

	It("hands the display over on a user switch", func() {
		const other = "1001"

		startAt(march(10, 21, 0))
		testutil.EventuallyApplied(daemon, user, false)

		By("switching to another user with its own window")
		otherStore := settings.NewConfigMapStore(k8sClient, testNamespace, other, logf.Log.WithName("cli"))
		otherCLI := testutil.NewSettings(otherStore, clk)
		start, err := scheduler.ParseTimeOfDay("20:00")
		Expect(err).NotTo(HaveOccurred())
		Expect(otherCLI.SetStartTime(ctx, start)).To(Succeed())

		Expect(daemon.Sessions.SwitchUser(ctx, other)).To(Succeed())
		info, ok := daemon.Sessions.Current()
		Expect(ok).To(BeTrue())
		Expect(info.User).To(Equal(other))
		testutil.EventuallyApplied(daemon, other, true)

		By("leaving the first user untouched at its window start")
		before := len(daemon.Applied(user))
		clk.SetTime(march(10, 22, 0))
		Consistently(func() int { return len(daemon.Applied(user)) }, 300*time.Millisecond, testutil.DefaultInterval).
			Should(Equal(before))
		Expect(cli.IsActivated(ctx)).To(BeFalse())
	})
})

var _ = Describe("autodark daemons sharing Redis settings", func() {
	const user = "1000"

	var (
		mr      *miniredis.Miniredis
		rc      *redis.Client
		clk     *clocktesting.FakeClock
		first   *testutil.Daemon
		second  *testutil.Daemon
		cliHash *settings.RedisStore
		cli     *settings.Settings
	)

	newDaemon := func(name string) *testutil.Daemon {
		log := logf.Log.WithName(name)
		return testutil.NewDaemon(clk, oracle.NewStatic(nil), func(u string) settings.Store {
			return settings.NewRedisStore(rc, u, log)
		}, log)
	}

	BeforeEach(func() {
		var err error
		mr, err = miniredis.Run()
		Expect(err).NotTo(HaveOccurred())
		rc = redis.NewClient(&redis.Options{Addr: mr.Addr()})

		clk = clocktesting.NewFakeClock(march(10, 21, 0))
		first = newDaemon("first")
		second = newDaemon("second")

		cliHash = settings.NewRedisStore(rc, user, logf.Log.WithName("cli"))
		cli = testutil.NewSettings(cliHash, clk)

		Expect(first.Sessions.StartUser(ctx, user)).To(Succeed())
		Expect(second.Sessions.StartUser(ctx, user)).To(Succeed())
		testutil.WaitForWatch(ctx, first, user, cliHash)
		testutil.WaitForWatch(ctx, second, user, cliHash)
	})

	AfterEach(func() {
		first.Sessions.Shutdown()
		second.Sessions.Shutdown()
		Expect(rc.Close()).To(Succeed())
		mr.Close()
	})

	It("applies a manual toggle on every daemon", func() {
		testutil.EventuallyApplied(first, user, false)
		testutil.EventuallyApplied(second, user, false)

		Expect(cli.SetActivated(ctx, true)).To(Succeed())

		testutil.EventuallyApplied(first, user, true)
		testutil.EventuallyApplied(second, user, true)

		raw, err := rc.HGet(ctx, settings.RedisHashKey(user), wellknown.KeyActivated).Result()
		Expect(err).NotTo(HaveOccurred())
		Expect(raw).To(Equal("1"))
	})

	It("switches every daemon to the oracle", func() {
		Expect(cli.SetMode(ctx, scheduler.KindOracle)).To(Succeed())

		for _, d := range []*testutil.Daemon{first, second} {
			runner := d.Runner(user)
			Eventually(func() scheduler.Kind {
				kind, _ := runner.Scheduler.ActivePolicy()
				return kind
			}, testutil.DefaultTimeout, testutil.DefaultInterval).Should(Equal(scheduler.KindOracle))
		}
	})
})

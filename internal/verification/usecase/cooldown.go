package usecase

import "time"

// startCooldownLocked restarts the resend countdown at seconds. Any previous
// countdown is stopped first so only one ever ticks.
func (c *Coordinator) startCooldownLocked(gen uint64, seconds int) {
	c.stopCooldownLocked()

	c.session.ResendCooldownSeconds = max(seconds, 0)
	if c.session.ResendCooldownSeconds == 0 {
		return
	}

	c.scheduleTickLocked(gen, c.tickToken)
}

func (c *Coordinator) stopCooldownLocked() {
	c.tickToken++
	if c.cooldown != nil {
		c.cooldown.Stop()
		c.cooldown = nil
	}
}

func (c *Coordinator) scheduleTickLocked(gen, token uint64) {
	c.cooldown = c.clock.AfterFunc(time.Second, func() {
		c.tick(gen, token)
	})
}

func (c *Coordinator) tick(gen, token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen.Load() || token != c.tickToken {
		return
	}

	if c.session.ResendCooldownSeconds > 0 {
		c.session.ResendCooldownSeconds--
	}

	if c.session.ResendCooldownSeconds > 0 {
		c.scheduleTickLocked(gen, token)
	} else {
		c.cooldown = nil
	}

	c.changedLocked()
}

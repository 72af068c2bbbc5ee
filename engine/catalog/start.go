package catalog

import "context"

// Start runs the page-load sequence: filters, then the unfiltered model list,
// then recommendations in the background. Search text and filter selections
// left over from earlier operations are cleared first. Start returns once the
// model list is in place; use Wait to block on the background load.
func (c *Controller) Start(ctx context.Context) error {
	c.SetFilters("", "", "")
	if err := c.LoadFilters(ctx); err != nil {
		return err
	}
	if err := c.LoadModels(ctx); err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)
	c.bg.Add(1)
	go func() {
		defer c.bg.Done()
		if err := c.LoadRecommendations(bg); err != nil {
			c.log.Warn("background recommendations failed", "err", err)
		}
	}()
	return nil
}

// Wait blocks until background loads started by Start have finished.
func (c *Controller) Wait() {
	c.bg.Wait()
}

package app

// setupEventBus registers the bus consumers. It runs before anything emits.
func (a *App) setupEventBus() {
	bus := a.Deps.EventBus
	if bus == nil {
		return
	}
	a.NotificationService.Register(bus)
	a.CampaignService.Register(bus)
}

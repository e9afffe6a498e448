package relay

var (
	SessionsTotal        = sessionsTotal
	FragmentsTotal       = fragmentsTotal
	PersistFailuresTotal = persistFailuresTotal
	UpstreamErrorsTotal  = upstreamErrorsTotal
)

type Observer = observer

func NewObserver(done <-chan struct{}, onFire func()) *Observer {
	return newObserver(done, onFire)
}

func (o *Observer) Fire() { o.fire() }
func (o *Observer) Poll() bool { return o.poll() }
func (o *Observer) Stop() { o.stop() }

package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// DefaultChannel is the Redis pub/sub channel carrying auth events.
const DefaultChannel = "auth:session-events"

// Provider resolves request tokens to a State and fans auth events out to subscribers.
// Start and Stop bound the event subscription.
type Provider struct {
	Verifier TokenVerifier
	Roles    RoleLookup
	Rdb      *redis.Client
	Channel  string

	subsMu sync.Mutex
	subs   map[int]func(Event)
	nextID int

	pubsub *redis.PubSub
	done   chan struct{}
}

func NewProvider(verifier TokenVerifier, roles RoleLookup, rdb *redis.Client) *Provider {
	return &Provider{
		Verifier: verifier,
		Roles:    roles,
		Rdb:      rdb,
		Channel:  DefaultChannel,
		subs:     map[int]func(Event){},
	}
}

func (p *Provider) channel() string {
	if p.Channel == "" {
		return DefaultChannel
	}
	return p.Channel
}

// Resolve verifies token and reads the user's current role from profiles. A failed role
// lookup is logged and resolves to no role.
func (p *Provider) Resolve(ctx context.Context, token string) (State, error) {
	user, err := p.Verifier.Verify(ctx, token)
	if err != nil {
		return State{}, err
	}
	state := State{User: user}
	role, err := p.Roles.ProfileRole(ctx, user.ID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID).Msg("session: role lookup failed")
		return state, nil
	}
	if role != "" {
		state.Role = &role
	}
	return state, nil
}

// OnChange registers fn for every auth event. The returned func unsubscribes it.
func (p *Provider) OnChange(fn func(Event)) func() {
	p.subsMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = fn
	p.subsMu.Unlock()
	return func() {
		p.subsMu.Lock()
		delete(p.subs, id)
		p.subsMu.Unlock()
	}
}

// Publish sends ev on the session channel. Without Redis it is handled in-process.
func (p *Provider) Publish(ctx context.Context, ev Event) error {
	if !ev.Type.Valid() {
		return ErrUnknownEvent
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	if p.Rdb == nil {
		p.handle(ev)
		return nil
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.Rdb.Publish(ctx, p.channel(), b).Err()
}

// Start subscribes to the session channel and dispatches events until Stop. It returns
// once the subscription is confirmed.
func (p *Provider) Start(ctx context.Context) error {
	if p.Rdb == nil {
		return nil
	}
	if p.pubsub != nil {
		return errors.New("session: provider already started")
	}
	ps := p.Rdb.Subscribe(ctx, p.channel())
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return err
	}
	p.pubsub = ps
	p.done = make(chan struct{})
	go p.run(ps.Channel(), p.done)
	log.Info().Str("channel", p.channel()).Msg("session: subscribed to auth events")
	return nil
}

func (p *Provider) run(ch <-chan *redis.Message, done chan struct{}) {
	defer close(done)
	for msg := range ch {
		var ev Event
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			log.Warn().Err(err).Msg("session: dropping malformed auth event")
			continue
		}
		p.handle(ev)
	}
}

// Stop unsubscribes and waits for the dispatch loop to exit.
func (p *Provider) Stop() error {
	if p.pubsub == nil {
		return nil
	}
	err := p.pubsub.Close()
	<-p.done
	p.pubsub = nil
	return err
}

func (p *Provider) handle(ev Event) {
	if !ev.Type.Valid() {
		log.Warn().Str("event", string(ev.Type)).Msg("session: ignoring unknown auth event")
		return
	}
	p.subsMu.Lock()
	fns := make([]func(Event), 0, len(p.subs))
	for _, fn := range p.subs {
		fns = append(fns, fn)
	}
	p.subsMu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}

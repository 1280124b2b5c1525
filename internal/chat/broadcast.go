package chat

import (
	"sync"
	"time"

	"github.com/wtask/chatroom/internal/chat/message"
	"github.com/wtask/chatroom/internal/chat/registry"
)

// Broadcast - formats the envelope once and fans it out to every registered
// connection except exclude. Recipients are written concurrently against a
// point-in-time snapshot, so a slow or dead peer never blocks the others or
// the registry. Entries that fail the write are pruned after the pass; their
// departure notice is left to the owning session.
func (s *Server) Broadcast(sender, body string, exclude registry.ID) {
	line := message.Format(time.Now(), sender, body)
	s.recent.Push(line)

	var (
		mu     sync.Mutex
		failed []*registry.Conn
	)
	wg := sync.WaitGroup{}
	for _, c := range s.clients.Snapshot() {
		if c.ID() == exclude {
			continue
		}
		if !c.Active() {
			mu.Lock()
			failed = append(failed, c)
			mu.Unlock()
			continue
		}
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Send(line, s.writeTimeout); err != nil {
				mu.Lock()
				failed = append(failed, c)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	for _, c := range failed {
		s.clients.Remove(c.ID())
		c.Close()
		s.logger.Warn().Str("name", c.Name()).Str("peer", string(c.ID())).Msg("recipient pruned after failed write")
	}
}

// reply - sends a private system line to a single connection.
func (s *Server) reply(c *registry.Conn, body string) {
	if err := c.Send(message.System(time.Now(), body), s.writeTimeout); err != nil {
		s.logger.Warn().Str("name", c.Name()).Err(err).Msg("private reply failed")
	}
}

package rete

// activation is one match of a rule.
type activation struct {
	rule      *Rule
	token     *token
	fired     bool
	cancelled bool
	unmatch   []func()
}

type agendaItem struct {
	act     *activation
	unmatch bool
}

// agenda keeps pending firings and un-match notifications in the order
// they happened.
type agenda struct {
	items []agendaItem
	live  int
}

func (a *agenda) schedule(act *activation) {
	a.live++
	a.items = append(a.items, agendaItem{act: act})
}

// cancel removes act from the match set. An activation that has not fired
// yet is dropped; a fired one queues its un-match callbacks.
func (a *agenda) cancel(act *activation) {
	a.live--
	if !act.fired {
		act.cancelled = true
		return
	}
	if len(act.unmatch) > 0 {
		a.items = append(a.items, agendaItem{act: act, unmatch: true})
	}
}

func (a *agenda) len() int { return len(a.items) }

// Context is passed to a rule consequence.
type Context struct {
	session *Session
	act     *activation
}

// Rule returns the rule that fired.
func (c *Context) Rule() *Rule { return c.act.rule }

// Facts returns the facts the rule's conditions bound, in condition order.
func (c *Context) Facts() []any { return c.act.token.facts }

// Extras returns the facts that satisfied positive Exists conditions.
func (c *Context) Extras() []any { return c.act.token.extras }

// Global returns the session global registered under name.
func (c *Context) Global(name string) (any, bool) {
	v, ok := c.session.globals[name]
	return v, ok
}

// OnUnmatch registers f to run when the match that fired is cancelled.
func (c *Context) OnUnmatch(f func()) {
	c.act.unmatch = append(c.act.unmatch, f)
}

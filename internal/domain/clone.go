package domain

import "time"

// Deep copies for snapshot semantics. Lifecycle operations take a Job
// snapshot and return a new one; nothing they touch may alias the caller's
// copy.

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneFloatMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	c := make(map[string]float64, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Clone returns a deep copy of the offer, including its negotiation history.
func (o *Offer) Clone() *Offer {
	if o == nil {
		return nil
	}
	c := *o
	c.RolePrices = cloneFloatMap(o.RolePrices)
	c.NotifiedDate = cloneTime(o.NotifiedDate)
	c.AgreedDate = cloneTime(o.AgreedDate)
	c.ReactivatedAt = cloneTime(o.ReactivatedAt)
	c.ReactivatedFrom = o.ReactivatedFrom.Clone()
	if o.NegotiationHistory != nil {
		c.NegotiationHistory = make([]NegotiationRecord, len(o.NegotiationHistory))
		for i, rec := range o.NegotiationHistory {
			r := rec
			r.RoleDiscounts = cloneFloatMap(rec.RoleDiscounts)
			r.Date = rec.Date
			c.NegotiationHistory[i] = r
		}
	}
	return &c
}

// Clone returns a deep copy of the rejection record.
func (r *Rejection) Clone() *Rejection {
	if r == nil {
		return nil
	}
	c := *r
	c.FollowUpDate = cloneTime(r.FollowUpDate)
	c.LastOffer = r.LastOffer.Clone()
	return &c
}

// Clone returns a deep copy of the measure record.
func (m *Measure) Clone() *Measure {
	if m == nil {
		return nil
	}
	c := *m
	c.Appointment = cloneTime(m.Appointment)
	return &c
}

// Clone returns a deep copy of the payment plan.
func (p *PaymentPlan) Clone() *PaymentPlan {
	if p == nil {
		return nil
	}
	c := *p
	if p.ChequeLines != nil {
		c.ChequeLines = make([]ChequeLine, len(p.ChequeLines))
		copy(c.ChequeLines, p.ChequeLines)
	}
	return &c
}

// Clone returns a deep copy of the service ledger.
func (s *ServiceInfo) Clone() *ServiceInfo {
	if s == nil {
		return nil
	}
	c := *s
	if s.Visits != nil {
		c.Visits = make([]ServiceVisit, len(s.Visits))
		for i, v := range s.Visits {
			vc := v
			vc.VisitedAt = cloneTime(v.VisitedAt)
			vc.CompletedAt = cloneTime(v.CompletedAt)
			c.Visits[i] = vc
		}
	}
	if s.Payments != nil {
		p := *s.Payments
		c.Payments = &p
	}
	if s.Discount != nil {
		d := *s.Discount
		c.Discount = &d
	}
	c.CompletedAt = cloneTime(s.CompletedAt)
	return &c
}

// Clone returns a deep copy of the finance record.
func (f *Finance) Clone() *Finance {
	if f == nil {
		return nil
	}
	c := *f
	if f.Payments != nil {
		p := *f.Payments
		c.Payments = &p
	}
	if f.Discount != nil {
		d := *f.Discount
		c.Discount = &d
	}
	c.ClosedAt = cloneTime(f.ClosedAt)
	return &c
}

// Clone returns a deep copy of the assembly record.
func (a *AssemblyInfo) Clone() *AssemblyInfo {
	if a == nil {
		return nil
	}
	c := *a
	c.Date = cloneTime(a.Date)
	return &c
}

// Clone returns a deep copy of the production record.
func (p *ProductionInfo) Clone() *ProductionInfo {
	if p == nil {
		return nil
	}
	c := *p
	c.AgreementDate = cloneTime(p.AgreementDate)
	return &c
}

// Clone returns a deep copy of the whole job snapshot.
func (j *Job) Clone() *Job {
	if j == nil {
		return nil
	}
	c := *j
	if j.Roles != nil {
		c.Roles = make(RoleList, len(j.Roles))
		copy(c.Roles, j.Roles)
	}
	c.Measure = j.Measure.Clone()
	c.Offer = j.Offer.Clone()
	c.PaymentPlan = j.PaymentPlan.Clone()
	c.Rejection = j.Rejection.Clone()
	if j.PendingLines != nil {
		c.PendingLines = make(PendingLineList, len(j.PendingLines))
		copy(c.PendingLines, j.PendingLines)
	}
	c.Service = j.Service.Clone()
	c.Finance = j.Finance.Clone()
	c.Assembly = j.Assembly.Clone()
	c.Production = j.Production.Clone()
	if j.PendingPurchaseOrderID != nil {
		id := *j.PendingPurchaseOrderID
		c.PendingPurchaseOrderID = &id
	}
	return &c
}

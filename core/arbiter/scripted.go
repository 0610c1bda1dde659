package arbiter

// Scripted is an Arbiter that replays prepared answers in order. It records
// every question it was asked so tests can assert how often and with what
// context arbitration was invoked.
type Scripted struct {
	// Answers are consumed front to back; once exhausted, Ask returns
	// Unresolved answers.
	Answers []Answer
	// Asked records every question in order.
	Asked []Question
}

func (s *Scripted) Ask(q Question) (Answer, error) {
	s.Asked = append(s.Asked, q)
	if len(s.Answers) == 0 {
		return Answer{Kind: Unresolved}, nil
	}
	a := s.Answers[0]
	s.Answers = s.Answers[1:]
	if a.Kind == AcceptedProposal && a.Value == "" {
		a.Value = q.Proposal
	}
	return a, nil
}

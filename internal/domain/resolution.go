package domain

import "encoding/json"

type ResolutionKind string

const (
	ResolutionAllocated      ResolutionKind = "allocated"
	ResolutionRecommended    ResolutionKind = "recommended"
	ResolutionConversational ResolutionKind = "conversational"
)

// Resolution is the outcome of resolving one inbound message. The payload is
// an AllocationOffer for allocated and recommended results and the reply text
// for conversational ones.
type Resolution struct {
	kind  ResolutionKind
	offer AllocationOffer
	reply string
}

func Allocated(offer AllocationOffer) Resolution {
	return Resolution{kind: ResolutionAllocated, offer: offer}
}

func Recommended(offer AllocationOffer) Resolution {
	return Resolution{kind: ResolutionRecommended, offer: offer}
}

func Conversational(reply string) Resolution {
	return Resolution{kind: ResolutionConversational, reply: reply}
}

func (r Resolution) Kind() ResolutionKind {
	return r.kind
}

// Offer returns the allocation offer and false for conversational results.
func (r Resolution) Offer() (AllocationOffer, bool) {
	if r.kind == ResolutionConversational {
		return AllocationOffer{}, false
	}
	return r.offer, true
}

// Reply returns the conversational reply and false for offer results.
func (r Resolution) Reply() (string, bool) {
	if r.kind != ResolutionConversational {
		return "", false
	}
	return r.reply, true
}

type resolutionJSON struct {
	Kind    ResolutionKind `json:"kind"`
	Payload any            `json:"payload"`
}

func (r Resolution) MarshalJSON() ([]byte, error) {
	out := resolutionJSON{Kind: r.kind}
	if r.kind == ResolutionConversational {
		out.Payload = r.reply
	} else {
		out.Payload = r.offer
	}
	return json.Marshal(out)
}

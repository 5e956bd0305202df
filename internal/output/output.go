// Package output renders decoded DNS messages for humans (dig-style,
// optionally colorized) and machines (JSON). It consumes the typed packets
// the core produces and contains no protocol logic.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/dugdns/dug/internal/dns"
	"github.com/dugdns/dug/internal/lookup"
)

// Renderer writes lookup results to w in one of three shapes: full
// dig-style text, short answer-only lines, or a JSON document.
type Renderer struct {
	JSON  bool
	Short bool

	w         io.Writer
	nameColor *color.Color
	typeColor *color.Color
	dataColor *color.Color
}

// NewRenderer creates a renderer. Color is used only when forced or when w
// is a terminal.
func NewRenderer(w io.Writer, forceColor bool) *Renderer {
	useColor := forceColor
	if !useColor {
		if f, ok := w.(*os.File); ok {
			useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
		}
	}
	r := &Renderer{
		w:         w,
		nameColor: color.New(color.FgBlue),
		typeColor: color.New(color.FgYellow, color.Bold),
		dataColor: color.New(color.FgGreen),
	}
	if !useColor {
		r.nameColor.DisableColor()
		r.typeColor.DisableColor()
		r.dataColor.DisableColor()
	}
	return r
}

// Render writes one lookup result.
func (r *Renderer) Render(res lookup.Result) error {
	switch {
	case r.JSON:
		return r.renderJSON(res)
	case r.Short:
		return r.renderShort(res)
	default:
		return r.renderText(res)
	}
}

func (r *Renderer) renderShort(res lookup.Result) error {
	for _, rr := range res.Response.Answers {
		if rr.Type() == dns.TypeOPT {
			continue
		}
		if _, err := fmt.Fprintln(r.w, FormatRData(rr)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) renderText(res lookup.Result) error {
	h := res.Response.Header
	fmt.Fprintf(r.w, ";; status: %s, id: %d, via: %s, elapsed: %s\n",
		h.RCode(), h.ID, res.Via, res.Elapsed.Round(100*time.Microsecond))

	flags := headerFlagNames(h)
	fmt.Fprintf(r.w, ";; flags: %s; QUERY: %d, ANSWER: %d, AUTHORITY: %d, ADDITIONAL: %d\n",
		strings.Join(flags, " "), len(res.Response.Questions), len(res.Response.Answers),
		len(res.Response.Authorities), len(res.Response.Additionals))

	if opt := dns.ExtractOPT(res.Response.Additionals); opt != nil {
		fmt.Fprintf(r.w, ";; EDNS: version %d, udp: %d, do: %t\n", opt.Version, opt.UDPPayloadSize, opt.DNSSECOk)
	}

	for _, q := range res.Response.Questions {
		fmt.Fprintf(r.w, ";; %s\n", q)
	}
	r.renderSection("ANSWER", res.Response.Answers)
	r.renderSection("AUTHORITY", res.Response.Authorities)
	r.renderSection("ADDITIONAL", res.Response.Additionals)
	return nil
}

func (r *Renderer) renderSection(title string, records []dns.Record) {
	shown := 0
	for _, rr := range records {
		if rr.Type() == dns.TypeOPT {
			continue // already summarized in the EDNS line
		}
		shown++
	}
	if shown == 0 {
		return
	}
	fmt.Fprintf(r.w, "\n;; %s\n", title)
	for _, rr := range records {
		if rr.Type() == dns.TypeOPT {
			continue
		}
		h := rr.Header()
		name := dns.NormalizeName(h.Name) + "."
		fmt.Fprintf(r.w, "%s\t%d\t%s\t%s\t%s\n",
			r.nameColor.Sprint(name),
			h.TTL,
			dns.RecordClass(h.Class),
			r.typeColor.Sprint(rr.Type().String()),
			r.dataColor.Sprint(FormatRData(rr)),
		)
	}
}

// jsonAnswer is the machine-readable shape of one resource record.
type jsonAnswer struct {
	Name  string `json:"name"`
	Type  string `json:"type"`
	Class string `json:"class"`
	TTL   uint32 `json:"ttl"`
	Data  string `json:"data"`
}

type jsonResult struct {
	Status      string       `json:"status"`
	ID          uint16       `json:"id"`
	Via         string       `json:"via"`
	Truncated   bool         `json:"truncated"`
	Question    string       `json:"question"`
	Answers     []jsonAnswer `json:"answers"`
	Authorities []jsonAnswer `json:"authorities,omitempty"`
	Additionals []jsonAnswer `json:"additionals,omitempty"`
}

func (r *Renderer) renderJSON(res lookup.Result) error {
	out := jsonResult{
		Status:      res.Response.Header.RCode().String(),
		ID:          res.Response.Header.ID,
		Via:         string(res.Via),
		Truncated:   res.Response.Header.Truncated(),
		Answers:     toJSONAnswers(res.Response.Answers),
		Authorities: toJSONAnswers(res.Response.Authorities),
		Additionals: toJSONAnswers(res.Response.Additionals),
	}
	if len(res.Response.Questions) > 0 {
		out.Question = res.Response.Questions[0].String()
	}
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func toJSONAnswers(records []dns.Record) []jsonAnswer {
	out := make([]jsonAnswer, 0, len(records))
	for _, rr := range records {
		if rr.Type() == dns.TypeOPT {
			continue
		}
		h := rr.Header()
		out = append(out, jsonAnswer{
			Name:  dns.NormalizeName(h.Name) + ".",
			Type:  rr.Type().String(),
			Class: dns.RecordClass(h.Class).String(),
			TTL:   h.TTL,
			Data:  FormatRData(rr),
		})
	}
	return out
}

// headerFlagNames lists the set header flags in conventional dig order.
func headerFlagNames(h dns.Header) []string {
	flags := make([]string, 0, 6)
	if h.IsResponse() {
		flags = append(flags, "qr")
	}
	if h.Authoritative() {
		flags = append(flags, "aa")
	}
	if h.Truncated() {
		flags = append(flags, "tc")
	}
	if h.RecursionDesired() {
		flags = append(flags, "rd")
	}
	if h.RecursionAvailable() {
		flags = append(flags, "ra")
	}
	if h.AuthenticData() {
		flags = append(flags, "ad")
	}
	if h.CheckingDisabled() {
		flags = append(flags, "cd")
	}
	return flags
}

// FormatRData renders a record's data in presentation form. Unknown types
// use the RFC 3597 generic encoding (\# length hexbytes).
func FormatRData(rr dns.Record) string {
	switch r := rr.(type) {
	case *dns.IPRecord:
		return r.Addr.String()
	case *dns.NameRecord:
		return dns.NormalizeName(r.Target) + "."
	case *dns.MXRecord:
		return fmt.Sprintf("%d %s.", r.Preference, dns.NormalizeName(r.Exchange))
	case *dns.SOARecord:
		return fmt.Sprintf("%s. %s. %d %d %d %d %d",
			dns.NormalizeName(r.MName), dns.NormalizeName(r.RName),
			r.Serial, r.Refresh, r.Retry, r.Expire, r.Minimum)
	case *dns.SRVRecord:
		return fmt.Sprintf("%d %d %d %s.", r.Priority, r.Weight, r.Port, dns.NormalizeName(r.Target))
	case *dns.TXTRecord:
		parts := make([]string, 0, len(r.Strings))
		for _, s := range r.Strings {
			parts = append(parts, fmt.Sprintf("%q", s))
		}
		return strings.Join(parts, " ")
	case *dns.CAARecord:
		return fmt.Sprintf("%d %s %q", r.Flags, r.Tag, r.Value)
	case *dns.OpaqueRecord:
		return fmt.Sprintf("\\# %d %x", len(r.Data), r.Data)
	default:
		return ""
	}
}

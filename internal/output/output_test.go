package output

import (
	"bytes"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dugdns/dug/internal/dns"
	"github.com/dugdns/dug/internal/lookup"
	"github.com/dugdns/dug/internal/transport"
)

func sampleResult() lookup.Result {
	return lookup.Result{
		Response: dns.Packet{
			Header:    dns.Header{ID: 0x1234, Flags: dns.QRFlag | dns.RDFlag | dns.RAFlag},
			Questions: []dns.Question{{Name: "example.com", Type: dns.TypeA, Class: dns.ClassIN}},
			Answers: []dns.Record{
				&dns.IPRecord{H: dns.NewRRHeader("example.com", dns.ClassIN, 300), T: dns.TypeA, Addr: net.IP{192, 0, 2, 1}},
				&dns.NameRecord{H: dns.NewRRHeader("example.com", dns.ClassIN, 300), T: dns.TypeCNAME, Target: "alias.example.net"},
			},
			Additionals: []dns.Record{dns.NewOPTRecord(1232, false)},
		},
		Via:     transport.KindUDP,
		Elapsed: 12 * time.Millisecond,
	}
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	require.NoError(t, r.Render(sampleResult()))

	out := buf.String()
	assert.Contains(t, out, ";; status: NOERROR, id: 4660, via: udp")
	assert.Contains(t, out, "qr rd ra")
	assert.Contains(t, out, ";; EDNS: version 0, udp: 1232, do: false")
	assert.Contains(t, out, "example.com. IN A")
	assert.Contains(t, out, ";; ANSWER")
	assert.Contains(t, out, "192.0.2.1")
	assert.Contains(t, out, "alias.example.net.")
	assert.NotContains(t, out, "OPT", "OPT is folded into the EDNS line")
	assert.NotContains(t, out, "\x1b[", "no color codes without a terminal")
}

func TestRenderShort(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.Short = true
	require.NoError(t, r.Render(sampleResult()))
	assert.Equal(t, "192.0.2.1\nalias.example.net.\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, false)
	r.JSON = true
	require.NoError(t, r.Render(sampleResult()))

	var got struct {
		Status   string `json:"status"`
		ID       uint16 `json:"id"`
		Via      string `json:"via"`
		Question string `json:"question"`
		Answers  []struct {
			Name string `json:"name"`
			Type string `json:"type"`
			TTL  uint32 `json:"ttl"`
			Data string `json:"data"`
		} `json:"answers"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "NOERROR", got.Status)
	assert.Equal(t, uint16(0x1234), got.ID)
	assert.Equal(t, "udp", got.Via)
	assert.Equal(t, "example.com. IN A", got.Question)
	require.Len(t, got.Answers, 2)
	assert.Equal(t, "example.com.", got.Answers[0].Name)
	assert.Equal(t, "A", got.Answers[0].Type)
	assert.Equal(t, "192.0.2.1", got.Answers[0].Data)
}

func TestFormatRData(t *testing.T) {
	h := dns.NewRRHeader("example.com", dns.ClassIN, 60)
	cases := []struct {
		rr   dns.Record
		want string
	}{
		{&dns.IPRecord{H: h, T: dns.TypeA, Addr: net.IP{192, 0, 2, 1}}, "192.0.2.1"},
		{&dns.NameRecord{H: h, T: dns.TypeNS, Target: "NS1.Example.com."}, "ns1.example.com."},
		{&dns.MXRecord{H: h, Preference: 10, Exchange: "mail.example.com"}, "10 mail.example.com."},
		{
			&dns.SOARecord{H: h, MName: "ns1.example.com", RName: "hostmaster.example.com",
				Serial: 1, Refresh: 2, Retry: 3, Expire: 4, Minimum: 5},
			"ns1.example.com. hostmaster.example.com. 1 2 3 4 5",
		},
		{&dns.SRVRecord{H: h, Priority: 1, Weight: 2, Port: 443, Target: "svc.example.com"}, "1 2 443 svc.example.com."},
		{
			&dns.TXTRecord{H: h, Strings: [][]byte{[]byte("v=spf1"), []byte("-all")}},
			`"v=spf1" "-all"`,
		},
		{&dns.CAARecord{H: h, Flags: 0, Tag: "issue", Value: []byte("ca.example.net")}, `0 issue "ca.example.net"`},
		{&dns.OpaqueRecord{H: h, T: dns.RecordType(64001), Data: []byte{0xDE, 0xAD}}, `\# 2 dead`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatRData(c.rr), c.want)
	}
}

func TestHeaderFlagNames(t *testing.T) {
	h := dns.Header{Flags: dns.QRFlag | dns.AAFlag | dns.ADFlag}
	assert.Equal(t, []string{"qr", "aa", "ad"}, headerFlagNames(h))
}

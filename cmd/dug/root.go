package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dugdns/dug/internal/config"
	"github.com/dugdns/dug/internal/dns"
	"github.com/dugdns/dug/internal/logging"
	"github.com/dugdns/dug/internal/lookup"
	"github.com/dugdns/dug/internal/output"
	"github.com/dugdns/dug/internal/transport"
)

// Exit codes: 0 = success, 1 = no valid response obtained, 2 = a well-formed
// response arrived but carries a non-zero RCODE (NXDOMAIN, SERVFAIL, ...).
const (
	exitOK        = 0
	exitNoAnswer  = 1
	exitDNSFailed = 2
)

type cliFlags struct {
	configPath string
	server     string
	transport  string
	dohURL     string
	timeout    string
	ednsSize   int
	noEDNS     bool
	dnssec     bool
	reverse    bool
	short      bool
	jsonOut    bool
	forceColor bool
	verbose    bool
}

func newRootCmd(out io.Writer, exitCode *int) *cobra.Command {
	var flags cliFlags

	cmd := &cobra.Command{
		Use:   "dug [@server] name [type...]",
		Short: "DNS lookup over UDP, TCP, DoT, or DoH",
		Long: `dug sends a single DNS query to a resolver and prints the decoded response.

The server may be given as @HOST[:PORT] among the positional arguments or via
--server. Record types default to A; several types may be listed and are
queried concurrently.`,
		Example: `  dug example.com
  dug example.com AAAA MX @1.1.1.1
  dug --transport tls example.com TXT @dns.google
  dug --doh-url https://cloudflare-dns.com/dns-query example.com
  dug -x 8.8.8.8`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := runLookup(cmd.Context(), out, flags, args, cmd.Flags())
			*exitCode = code
			return err
		},
	}

	cmd.Flags().StringVar(&flags.configPath, "config", "", "path to YAML config file")
	cmd.Flags().StringVarP(&flags.server, "server", "s", "", "resolver address (HOST or HOST:PORT)")
	cmd.Flags().StringVarP(&flags.transport, "transport", "t", "", "transport: udp, tcp, tls, https")
	cmd.Flags().StringVar(&flags.dohURL, "doh-url", "", "DNS-over-HTTPS endpoint URL (implies --transport https)")
	cmd.Flags().StringVar(&flags.timeout, "timeout", "", "query timeout, e.g. 3s")
	cmd.Flags().IntVar(&flags.ednsSize, "edns-size", 0, "advertised EDNS UDP payload size")
	cmd.Flags().BoolVar(&flags.noEDNS, "no-edns", false, "do not attach an EDNS OPT record")
	cmd.Flags().BoolVar(&flags.dnssec, "dnssec", false, "set the DO flag to request DNSSEC records")
	cmd.Flags().BoolVarP(&flags.reverse, "reverse", "x", false, "reverse lookup: treat name as an IP address")
	cmd.Flags().BoolVar(&flags.short, "short", false, "print answer data only")
	cmd.Flags().BoolVar(&flags.jsonOut, "json", false, "print the response as JSON")
	cmd.Flags().BoolVar(&flags.forceColor, "color", false, "force colorized output")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}

func run(args []string, out io.Writer) int {
	exitCode := exitOK
	cmd := newRootCmd(out, &exitCode)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dug: %v\n", err)
		if exitCode == exitOK {
			exitCode = exitNoAnswer
		}
	}
	return exitCode
}

func runLookup(ctx context.Context, out io.Writer, flags cliFlags, args []string, fs *pflag.FlagSet) (int, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return exitNoAnswer, err
	}
	if err := applyFlags(&cfg, flags, fs); err != nil {
		return exitNoAnswer, err
	}

	name, types, server, err := parseArgs(args, flags.reverse)
	if err != nil {
		return exitNoAnswer, err
	}
	if server != "" {
		cfg.Resolver.Server = server
	}
	if err := cfg.Validate(); err != nil {
		return exitNoAnswer, err
	}
	logging.Configure(logging.Config{Level: cfg.Logging.Level, JSON: cfg.Logging.JSON})

	kind, err := transport.ParseKind(cfg.Resolver.Transport)
	if err != nil {
		return exitNoAnswer, err
	}

	client := &lookup.Client{
		Server:   cfg.Resolver.Server,
		Kind:     kind,
		Endpoint: cfg.Resolver.Endpoint,
		Timeout:  cfg.Resolver.Timeout,
		RecvSize: cfg.Resolver.RecvSize,
		EDNS:     cfg.EDNS.Enabled,
		EDNSSize: cfg.EDNS.PayloadSize,
		DNSSEC:   cfg.EDNS.DNSSEC,
	}

	renderer := output.NewRenderer(out, flags.forceColor)
	renderer.JSON = flags.jsonOut
	renderer.Short = flags.short

	results, errs := client.LookupAll(ctx, name, types)

	code := exitOK
	var firstErr error
	for i := range results {
		if errs[i] != nil {
			code = exitNoAnswer
			if firstErr == nil {
				firstErr = errs[i]
			}
			continue
		}
		if rerr := renderer.Render(results[i]); rerr != nil && firstErr == nil {
			firstErr = rerr
		}
		if results[i].Response.Header.RCode() != dns.RCodeNoError && code == exitOK {
			code = exitDNSFailed
		}
	}
	return code, firstErr
}

// applyFlags lays explicitly set command-line flags over the file config.
func applyFlags(cfg *config.Config, flags cliFlags, fs *pflag.FlagSet) error {
	if flags.server != "" {
		cfg.Resolver.Server = flags.server
	}
	if flags.transport != "" {
		cfg.Resolver.Transport = flags.transport
	}
	if flags.dohURL != "" {
		cfg.Resolver.Endpoint = flags.dohURL
		cfg.Resolver.Transport = string(transport.KindHTTPS)
	}
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil {
			return fmt.Errorf("invalid --timeout: %w", err)
		}
		cfg.Resolver.Timeout = d
	}
	if flags.ednsSize > 0 {
		cfg.EDNS.PayloadSize = flags.ednsSize
	}
	if flags.noEDNS {
		cfg.EDNS.Enabled = false
	}
	if fs.Changed("dnssec") {
		cfg.EDNS.DNSSEC = flags.dnssec
	}
	if flags.verbose {
		cfg.Logging.Level = "DEBUG"
	}
	return nil
}

// parseArgs splits positional arguments into the query name, record types,
// and an optional @server. With --reverse the name is an IP address and the
// only type is PTR.
func parseArgs(args []string, reverse bool) (name string, types []dns.RecordType, server string, err error) {
	var words []string
	for _, a := range args {
		if strings.HasPrefix(a, "@") {
			server = strings.TrimPrefix(a, "@")
			continue
		}
		words = append(words, a)
	}
	if len(words) == 0 {
		return "", nil, "", fmt.Errorf("no query name given")
	}

	if reverse {
		if len(words) > 1 {
			return "", nil, "", fmt.Errorf("reverse lookup takes exactly one address")
		}
		ip := net.ParseIP(words[0])
		if ip == nil {
			return "", nil, "", fmt.Errorf("invalid IP address %q", words[0])
		}
		name, err = dns.ReverseName(ip)
		if err != nil {
			return "", nil, "", err
		}
		return name, []dns.RecordType{dns.TypePTR}, server, nil
	}

	// First non-type word is the name; everything that parses as a record
	// type is a type. "dug A example.com" and "dug example.com A" both work.
	for _, w := range words {
		if rt, terr := dns.ParseRecordType(w); terr == nil && !looksLikeName(w) {
			types = append(types, rt)
			continue
		}
		if name != "" {
			return "", nil, "", fmt.Errorf("multiple query names given: %q and %q", name, w)
		}
		name = w
	}
	if name == "" {
		return "", nil, "", fmt.Errorf("no query name given")
	}
	if len(types) == 0 {
		types = []dns.RecordType{dns.TypeA}
	}
	return name, types, server, nil
}

// looksLikeName reports whether a word can only be a domain name ("a.pl"
// contains a dot, so it is a name even though "A" parses as a type).
func looksLikeName(w string) bool {
	return strings.Contains(w, ".")
}

// This is free and unencumbered software released into the public domain.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"unicode/utf8"

	"golang.org/x/crypto/argon2"
	"nullprogram.com/x/optparse"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
	"github.com/deflomu/openpgp-sdk-go/sigengine"
)

const (
	kdfTime   = 8
	kdfMemory = 1024 * 1024 // 1 GB
)

// kdf derives a 32-byte Ed25519 seed from a passphrase and user id,
// the same Argon2id call the original CLI's own kdf used (scaled by 1: no
// --repeat-style difficulty knob here).
func kdf(passphrase, uid []byte) []byte {
	return argon2.IDKey(passphrase, uid, kdfTime, kdfMemory, 1, 32)
}

// firstLine returns the first line of a file, not including \r or \n.
func firstLine(filename string) ([]byte, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s := bufio.NewScanner(f)
	if !s.Scan() {
		if err := s.Err(); err != nil && err != io.EOF {
			return nil, err
		}
		return nil, nil
	}
	return s.Bytes(), nil
}

// readPassphrase reads one line from stdin. The original CLI
// read a confirmed passphrase through pinentry or a raw terminal; that
// machinery isn't part of this core, so keygen falls back to a plain
// stdin line, same as --input does for a file.
func readPassphrase() ([]byte, error) {
	s := bufio.NewScanner(os.Stdin)
	if !s.Scan() {
		if err := s.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("no passphrase given on stdin")
	}
	return s.Bytes(), nil
}

type keygenConfig struct {
	uid     string
	created int64
	input   string
	verbose bool
}

func runKeygen(args []string) {
	options := []optparse.Option{
		{"uid", 'u', optparse.KindRequired},
		{"input", 'i', optparse.KindRequired},
		{"now", 'n', optparse.KindNone},
		{"time", 't', optparse.KindRequired},
		{"verbose", 'v', optparse.KindNone},
		{"help", 'h', optparse.KindNone},
	}
	results, rest, err := optparse.Parse(options, append([]string{"opgptool keygen"}, args...))
	if err != nil {
		fatal("%s", err)
	}
	if len(rest) > 0 {
		fatal("too many arguments")
	}

	conf := keygenConfig{created: time.Now().Unix()}
	var uidSeen bool
	for _, r := range results {
		switch r.Long {
		case "uid":
			conf.uid = r.Optarg
			uidSeen = true
		case "input":
			conf.input = r.Optarg
		case "now":
			conf.created = time.Now().Unix()
		case "time":
			t, err := strconv.ParseUint(r.Optarg, 10, 32)
			if err != nil {
				fatal("--time (-t): %s", err)
			}
			conf.created = int64(t)
		case "verbose":
			conf.verbose = true
		case "help":
			usage(os.Stdout)
			os.Exit(0)
		}
	}

	if !uidSeen {
		if email := os.Getenv("EMAIL"); email != "" {
			if realname := os.Getenv("REALNAME"); realname != "" {
				conf.uid = fmt.Sprintf("%s <%s>", realname, email)
				uidSeen = true
			}
		}
	}
	if !uidSeen {
		fatal("--uid required (or $REALNAME and $EMAIL)")
	}
	if len(conf.uid) > 255 || !utf8.ValidString(conf.uid) {
		fatal("user ID must be valid UTF-8 of at most 255 bytes")
	}

	log := newLogger(conf.verbose)
	log.Debugf("user id: %s", conf.uid)

	var passphrase []byte
	if conf.input != "" {
		passphrase, err = firstLine(conf.input)
	} else {
		passphrase, err = readPassphrase()
	}
	if err != nil {
		fatal("%s", err)
	}

	seed := kdf(passphrase, []byte(conf.uid))
	key := sigengine.NewSecretKey(seed, uint32(conf.created))

	keyID, err := key.KeyID()
	if err != nil {
		fatal("%s", err)
	}
	log.Debugf("key id: %x", keyID)

	pub := key.PublicKey()
	uid := &openpgp.UserID{Bytes: []byte(conf.uid)}

	pubBody, err := pub.EncodeBody()
	if err != nil {
		fatal("%s", err)
	}

	sigPacket, err := sigengine.SignCertification(
		pub, uid, openpgp.SigTypePositiveCert, openpgp.HashSHA256,
		key.Priv, keyID, uint32(conf.created),
	)
	if err != nil {
		fatal("%s", err)
	}

	out := bufio.NewWriter(os.Stdout)
	out.Write(openpgp.EncodePacket(openpgp.ContentTagPublicKey, pubBody))
	out.Write(openpgp.EncodePacket(openpgp.ContentTagUserID, uid.EncodeBody()))
	out.Write(sigPacket)
	if err := out.Flush(); err != nil {
		fatal("%s", err)
	}
}

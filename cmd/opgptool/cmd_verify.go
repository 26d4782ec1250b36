// This is free and unencumbered software released into the public domain.

package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"nullprogram.com/x/optparse"

	"github.com/deflomu/openpgp-sdk-go/openpgp"
	"github.com/deflomu/openpgp-sdk-go/sigengine"
)

// verifyState walks the event stream produced by a self-certified key:
// a primary public key, a user id, a certification signature over
// them, and optionally a subkey plus a binding signature over it. It
// mirrors the order cmd_keygen.go writes those packets in.
type verifyState struct {
	log *logrus.Logger

	primary *openpgp.PublicKey
	uid     *openpgp.UserID
	subkey  *openpgp.PublicKey

	pendingSig *openpgp.Signature
	certOK     bool
	bindOK     bool
	failed     error
}

func (v *verifyState) consume(ev openpgp.Event) openpgp.Disposition {
	switch ev.Kind {
	case openpgp.KindPacketTag:
		v.log.Debugf("packet tag: content-tag=%d", ev.PacketTag.ContentTag)
		return openpgp.ReleaseMemory
	case openpgp.KindPublicKey:
		v.primary = ev.PublicKey
		return openpgp.KeepMemory
	case openpgp.KindPublicSubkey:
		v.subkey = ev.PublicKey
		return openpgp.KeepMemory
	case openpgp.KindUserID:
		v.uid = ev.UserID
		return openpgp.KeepMemory
	case openpgp.KindSignature:
		v.pendingSig = ev.Signature
		return openpgp.KeepMemory
	case openpgp.KindPacketEnd:
		if v.pendingSig == nil || v.failed != nil {
			return openpgp.ReleaseMemory
		}
		sig := v.pendingSig
		v.pendingSig = nil
		v.verifyOne(sig, ev.Packet.Raw)
		return openpgp.ReleaseMemory
	case openpgp.KindParserError:
		v.failed = ev.Err
		return openpgp.ReleaseMemory
	default:
		return openpgp.ReleaseMemory
	}
}

func (v *verifyState) verifyOne(sig *openpgp.Signature, raw []byte) {
	switch sig.Type {
	case openpgp.SigTypeGenericCert, openpgp.SigTypePersonaCert, openpgp.SigTypeCasualCert, openpgp.SigTypePositiveCert:
		if v.primary == nil || v.uid == nil {
			v.failed = fmt.Errorf("certification signature seen before key and user id")
			return
		}
		if err := sigengine.VerifyCertification(v.primary, v.uid, sig, raw, v.primary); err != nil {
			v.failed = err
			return
		}
		v.certOK = true
	case openpgp.SigTypeSubkeyBinding:
		if v.primary == nil || v.subkey == nil {
			v.failed = fmt.Errorf("subkey binding signature seen before primary key and subkey")
			return
		}
		if err := sigengine.VerifySubkeyBinding(v.primary, v.subkey, sig, raw, v.primary); err != nil {
			v.failed = err
			return
		}
		v.bindOK = true
	default:
		v.failed = fmt.Errorf("unsupported signature type 0x%02x for verify", sig.Type)
	}
}

// runVerify checks that every signature in a self-certified key packet
// stream was produced by the key it certifies.
func runVerify(args []string) {
	options := []optparse.Option{
		{"verbose", 'v', optparse.KindNone},
		{"help", 'h', optparse.KindNone},
	}
	results, rest, err := optparse.Parse(options, append([]string{"opgptool verify"}, args...))
	if err != nil {
		fatal("%s", err)
	}

	var verbose bool
	for _, r := range results {
		switch r.Long {
		case "verbose":
			verbose = true
		case "help":
			usage(os.Stdout)
			os.Exit(0)
		}
	}
	in, err := openInput(rest)
	if err != nil {
		fatal("%s", err)
	}
	defer in.Close()

	state := &verifyState{log: newLogger(verbose)}
	opts := &openpgp.Options{
		Source:     openpgp.NewSource(in),
		Sink:       openpgp.SinkFunc(state.consume),
		Accumulate: true,
	}
	opts.Configure(openpgp.AllSubpacketTypes, openpgp.DispositionParsed)

	if err := openpgp.Parse(opts); err != nil {
		fatal("%s", err)
	}
	if state.failed != nil {
		fatal("%s", state.failed)
	}
	if !state.certOK {
		fatal("no certification signature verified")
	}
	if state.subkey != nil && !state.bindOK {
		fatal("subkey present but no binding signature verified")
	}

	fmt.Println("OK")
}

package app

import (
	"encoding/json"

	"gotreat/adapters/encoders"
	"gotreat/domain/treatment"
	"gotreat/internal/errors"
)

// encoderEnvelope tags a serialized production encoder with its code type
// so the concrete type can be restored on load
type encoderEnvelope struct {
	Code treatment.CodeType `json:"code"`
	Data json.RawMessage    `json:"data"`
}

// designAlias avoids recursive MarshalJSON calls
type designAlias TreatmentDesign

type designEnvelope struct {
	designAlias
	EncoderEnvelopes []encoderEnvelope `json:"encoders"`
}

// MarshalJSON serializes the design including its production encoders.
// Custom encoder types registered by callers are not serializable; designs
// using them must be kept in memory.
func (d *TreatmentDesign) MarshalJSON() ([]byte, error) {
	env := designEnvelope{designAlias: designAlias(*d)}
	for _, enc := range d.Encoders {
		data, err := json.Marshal(enc)
		if err != nil {
			return nil, errors.Wrapf(err, "serialize encoder %q", enc.Descriptor().Name)
		}
		code := enc.Descriptor().Code
		if !treatment.IsKnownCodeType(code) {
			return nil, errors.ConfigInvalidf("encoder %q has non-serializable custom code type %q", enc.Descriptor().Name, code)
		}
		env.EncoderEnvelopes = append(env.EncoderEnvelopes, encoderEnvelope{Code: code, Data: data})
	}
	return json.Marshal(env)
}

// UnmarshalJSON restores a design, reconstructing each production encoder
// from its tagged envelope
func (d *TreatmentDesign) UnmarshalJSON(data []byte) error {
	var env designEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return errors.Wrap(err, "decode treatment design")
	}
	*d = TreatmentDesign(env.designAlias)
	d.Encoders = nil
	for _, e := range env.EncoderEnvelopes {
		enc, err := decodeEncoder(e)
		if err != nil {
			return err
		}
		d.Encoders = append(d.Encoders, enc)
	}
	if len(d.Encoders) != len(d.Descriptors) {
		return errors.InvalidInput("treatment design payload: encoder count does not match descriptor catalogue")
	}
	return nil
}

func decodeEncoder(env encoderEnvelope) (encoders.Encoder, error) {
	var enc encoders.Encoder
	switch env.Code {
	case treatment.CodeClean:
		enc = &encoders.CleanEncoder{}
	case treatment.CodeIsBad:
		enc = &encoders.IsBadEncoder{}
	case treatment.CodeLev:
		enc = &encoders.LevEncoder{}
	case treatment.CodeCatP:
		enc = &encoders.PrevalenceEncoder{}
	case treatment.CodeCatB:
		enc = &encoders.ImpactEncoder{}
	default:
		return nil, errors.InvalidInput("unknown encoder code type in design payload: " + string(env.Code))
	}
	if err := json.Unmarshal(env.Data, enc); err != nil {
		return nil, errors.Wrapf(err, "decode %s encoder", env.Code)
	}
	return enc, nil
}

package config

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	for _, rule := range c.Headers {
		if err := rule.Validate(); err != nil {
			return err
		}
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
		validation.Field(&c.Output, validation.By(func(any) error {
			return validation.Validate(c.Output.Directory, validation.Required)
		})),
	)
}

// Validate validates the dev server parameters.
func (c *ServerConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// Validate validates a header rule.
func (r *HeaderRule) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Path, validation.Required),
	); err != nil {
		return err
	}
	for i := range r.Headers {
		h := &r.Headers[i]
		if err := validation.ValidateStruct(h,
			validation.Field(&h.Key, validation.Required),
		); err != nil {
			return err
		}
	}
	return nil
}

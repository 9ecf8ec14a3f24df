package waypoint_test

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/registry"
)

// ExampleNew walks a two-branch journey, then changes an earlier answer.
func ExampleNew() {
	reg := registry.NewRegistry()
	reg.RegisterCondition("isAdult", func(values domain.FieldReader, _ domain.Condition) bool {
		age, _ := values.Get("age").(int)
		return age >= 18
	})

	def := &domain.Definition{
		Name:    "apply",
		BaseURL: "/apply",
		Steps: []domain.StepConfig{
			{Route: "/start", EntryPoint: true, Next: domain.To("age")},
			{Route: "/age", Next: domain.When(
				domain.Condition{FnName: "isAdult", Next: domain.To("adult")},
				domain.Condition{Always: true, Next: domain.To("guardian")},
			)},
			{Route: "/adult"},
			{Route: "/guardian"},
		},
	}

	wiz, err := waypoint.New(def, waypoint.WithRegistry(reg))
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	session := domain.NewSession("s1", wiz.Name())
	visit := wiz.Visit(session)

	if err := wiz.CheckProgress(ctx, "/adult", visit); errors.Is(err, domain.ErrMissingPrereq) {
		fmt.Println("deep link refused")
	}

	_, _ = wiz.Complete(ctx, "/start", visit, "")
	session.Set("age", 30)
	_, _ = wiz.Complete(ctx, "/age", visit, "")
	dest, _ := wiz.NextStep("/age", visit)
	fmt.Println("next:", dest.Path)

	session.Set("age", 12)
	_, _ = wiz.Complete(ctx, "/age", visit, "")
	var perr *domain.ProgressError
	if err := wiz.CheckProgress(ctx, "/adult", visit); errors.As(err, &perr) {
		fmt.Println("redirect:", perr.Redirect)
	}

	// Output:
	// deep link refused
	// next: /apply/adult
	// redirect: /apply/guardian
}

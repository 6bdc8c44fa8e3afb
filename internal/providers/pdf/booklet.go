package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

type PDFProvider struct{}

func New() Provider {
	return &PDFProvider{}
}

func (p *PDFProvider) GenerateBooklet(ctx context.Context, data BookletData) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Página {current} de {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	// Cover block
	m.AddRow(15,
		text.NewCol(12, "Carnê de Pagamento", props.Text{
			Size:  20,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)

	m.AddRow(30,
		col.New(6).Add(
			text.New("Membro: "+data.MemberName, props.Text{Top: 0}),
			text.New("Telefone: "+data.MemberPhone, props.Text{Top: 5}),
		),
		col.New(6).Add(
			text.New("Carnê nº "+data.Number, props.Text{Top: 0, Style: fontstyle.Bold}),
			text.New(fmt.Sprintf("Ano: %d", data.Year), props.Text{Top: 5}),
			text.New("Valor da parcela: "+data.Amount, props.Text{Top: 10}),
		),
	)

	// Slip table header
	m.AddRow(10,
		text.NewCol(2, "Parcela", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Vencimento", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Valor", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Situação", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Pago em", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, slip := range data.Slips {
		m.AddRow(12,
			text.NewCol(2, fmt.Sprintf("%d/%d", slip.Number, len(data.Slips)), props.Text{Size: 9}),
			text.NewCol(3, slip.DueDate, props.Text{Size: 9}),
			text.NewCol(3, slip.Amount, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, slip.Status, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, slip.PaidAt, props.Text{Size: 9, Align: align.Right}),
		)
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}

	return bytes.NewReader(doc.GetBytes()), nil
}

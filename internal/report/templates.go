package report

const opportunitiesHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; margin: 0; padding: 0; background-color: #f8fafc; color: #1e293b; line-height: 1.5;">
<div style="max-width: 1200px; margin: 0 auto; padding: 2rem;">
  <div style="background: linear-gradient(135deg, #0f172a, #1e293b); color: white; padding: 2.5rem 2rem; margin-bottom: 2.5rem; border-radius: 12px;">
    <h1 style="margin: 0 0 1rem 0; font-size: 1.875rem; font-weight: 600;">Analyse des actions européennes - {{.Date}}</h1>
    <p style="margin: 0; opacity: 0.9; font-size: 1.125rem;">Top opportunités d'investissement identifiées en Europe</p>
  </div>
{{if .Opportunities}}
  <table style="width: 100%; border-collapse: separate; border-spacing: 0; background-color: white; border-radius: 12px; overflow: hidden; margin-bottom: 2rem;">
    <tr>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">Action</th>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">Prix Actuel (€)</th>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">Prix Achat (€)</th>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">Prix Vente (€)</th>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">Gain Potentiel (%)</th>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">Score</th>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">RSI</th>
      <th style="background-color: #1e293b; color: white; padding: 1rem; text-align: left; font-size: 0.875rem; text-transform: uppercase;">Signaux Positifs</th>
    </tr>
{{range .Opportunities}}
    <tr>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0; font-weight: 600;"><a href="{{.QuoteURL}}" style="color: #3b82f6; text-decoration: none; font-weight: 600;" target="_blank">{{.Name}} ({{.Ticker}})</a></td>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0;">{{money .CurrentPrice}}</td>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0;">{{money .BuyTarget}}</td>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0;">{{money .SellTarget}}</td>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0; font-weight: 600; color: {{color .PotentialGain}};">{{signedPct .PotentialGain}}</td>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0; font-weight: 500;">{{score .Score}}</td>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0;">{{rsi .RSI}}</td>
      <td style="padding: 1rem; border-bottom: 1px solid #e2e8f0; color: #64748b; font-size: 0.875rem;">{{.Signals.String}}</td>
    </tr>
{{end}}
  </table>
{{else}}
  <p style="text-align: center; color: #64748b;">Aucune opportunité identifiée aujourd'hui.</p>
{{end}}
  <div style="font-size: 0.85rem; color: #64748b; margin-top: 2rem; text-align: center;">
    <p>Cette analyse est générée automatiquement par un algorithme et ne constitue pas une recommandation d'investissement.</p>
    <p>Cliquez sur le nom d'une action pour voir sa cotation en temps réel.</p>
  </div>
</div>
</body>
</html>
`

const portfolioHTML = `<!DOCTYPE html>
<html lang="fr">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; margin: 0; padding: 0; background-color: #f1f3f5; color: #1a1a1a;">
<div style="max-width: 1100px; margin: 0 auto; padding: 40px 20px;">
  <div style="background: linear-gradient(135deg, #1e3c72 0%, #2a5298 100%); color: white; padding: 35px; border-radius: 12px; margin-bottom: 30px; text-align: center;">
    <h1 style="margin: 0 0 8px 0; font-size: 1.75rem;">Suivi du portefeuille - {{.Date}}</h1>
    <p style="margin: 0; opacity: 0.9;">Valeur totale : {{money .Summary.TotalValue}} &middot; Plus/moins-value : <span style="color: {{if lt .Summary.TotalGain 0.0}}#fecaca{{else}}#bbf7d0{{end}};">{{money .Summary.TotalGain}} ({{signedPct .Summary.TotalReturn}})</span></p>
  </div>
{{if .Summary.Holdings}}
  <table style="width: 100%; border-collapse: separate; border-spacing: 0; background-color: white; border-radius: 12px; overflow: hidden;">
    <tr>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">Action</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">Cours</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">1 j</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">90 j</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">180 j</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">Depuis achat</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">Tendance</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">Vente conseillée</th>
      <th style="background-color: #1e3c72; color: white; padding: 0.9rem; text-align: left; font-size: 0.85rem; text-transform: uppercase;">Stop loss</th>
    </tr>
{{range .Summary.Holdings}}
    <tr>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0; font-weight: 600;">{{.Name}} ({{.Symbol}})</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0;">{{money .CurrentPrice}}</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0; color: {{color (index .Variations 1)}};">{{signedPct (index .Variations 1)}}</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0; color: {{color (index .Variations 90)}};">{{signedPct (index .Variations 90)}}</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0; color: {{color (index .Variations 180)}};">{{signedPct (index .Variations 180)}}</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0; color: {{color .PurchaseVariation}};">{{signedPct .PurchaseVariation}}</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0;">{{.Trend}}</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0;">{{if .SellPrice}}{{money .SellPrice}}{{else}}<span style="color: #64748b; font-size: 0.85rem;">{{.SellPriceReason}}</span>{{end}}</td>
      <td style="padding: 0.9rem; border-bottom: 1px solid #e2e8f0;">{{money .StopLoss}}</td>
    </tr>
{{end}}
  </table>
{{else}}
  <p style="text-align: center; color: #64748b;">Aucune position à analyser.</p>
{{end}}
  <div style="font-size: 0.85rem; color: #64748b; margin-top: 2rem; text-align: center;">
    <p>Rapport généré automatiquement ; ne constitue pas un conseil en investissement.</p>
  </div>
</div>
</body>
</html>
`
